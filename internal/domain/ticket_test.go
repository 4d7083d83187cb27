package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveResolvedAt(t *testing.T) {
	now := time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)
	earlier := now.Add(-2 * time.Hour)

	tests := []struct {
		name      string
		oldStatus TicketStatus
		newStatus TicketStatus
		old       *time.Time
		want      *time.Time
	}{
		{"open to resolved stamps now", TicketStatusOpen, TicketStatusResolved, nil, &now},
		{"closed to resolved stamps now", TicketStatusClosed, TicketStatusResolved, nil, &now},
		{"resolved to resolved keeps stamp", TicketStatusResolved, TicketStatusResolved, &earlier, &earlier},
		{"resolved to open clears", TicketStatusResolved, TicketStatusOpen, &earlier, nil},
		{"resolved to closed clears", TicketStatusResolved, TicketStatusClosed, &earlier, nil},
		{"open to in_progress stays nil", TicketStatusOpen, TicketStatusInProgress, nil, nil},
		{"stale stamp on open ticket is cleared", TicketStatusOpen, TicketStatusOpen, &earlier, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveResolvedAt(tt.oldStatus, tt.newStatus, tt.old, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got))
		})
	}
}

func TestParseAndLookupHaveDifferentStrictness(t *testing.T) {
	status, err := ParseTicketStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, TicketStatusInProgress, status)

	_, err = ParseTicketStatus("bogus")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, ok := LookupTicketStatus("bogus")
	assert.False(t, ok)

	_, ok = LookupTicketStatus("OPEN")
	assert.False(t, ok, "status values are case sensitive")

	_, err = ParseTicketPriority("critical")
	assert.ErrorIs(t, err, ErrUnknownPriority)

	priority, ok := LookupTicketPriority("urgent")
	assert.True(t, ok)
	assert.Equal(t, TicketPriorityUrgent, priority)

	_, err = ParseTicketUpdateType("reply")
	assert.ErrorIs(t, err, ErrUnknownUpdateType)
}

func TestRanks(t *testing.T) {
	assert.Less(t, TicketPriorityLow.Rank(), TicketPriorityMedium.Rank())
	assert.Less(t, TicketPriorityHigh.Rank(), TicketPriorityUrgent.Rank())
	assert.Less(t, TicketStatusOpen.Rank(), TicketStatusInProgress.Rank())
	assert.Less(t, TicketStatusResolved.Rank(), TicketStatusClosed.Rank())
	assert.Equal(t, 0, TicketStatus("bogus").Rank())
}
