package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string

	d.Subscribe(EventTicketReopened, func(ctx context.Context, e Event) error {
		seen = append(seen, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventTicketReopened, func(ctx context.Context, e Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(EventTagAttached, func(ctx context.Context, e Event) error {
		seen = append(seen, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventTicketReopened, 1, nil, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first failed")
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestSubscribeAll(t *testing.T) {
	d := NewInMemoryDispatcher()
	counts := map[EventType]int{}
	SubscribeAll(d, func(ctx context.Context, e Event) error {
		counts[e.Type]++
		return nil
	})

	for _, eventType := range AllEventTypes {
		require.NoError(t, d.Publish(context.Background(), NewEvent(eventType, 3, nil, nil)))
	}
	assert.Len(t, counts, len(AllEventTypes))
}

func TestNewEventStampsID(t *testing.T) {
	actor := int64(9)
	e := NewEvent(EventUpdateAdded, 4, &actor, UpdateAddedPayload{UpdateID: 2})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, int64(4), e.TicketID)
	assert.False(t, e.Timestamp.IsZero())
}
