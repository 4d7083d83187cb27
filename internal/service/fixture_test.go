package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/events"
	"github.com/deskops/support-desk/internal/repository/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) handle(_ context.Context, e events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) types() []events.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]events.EventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store    *memory.Store
	clock    *fakeClock
	tickets  *TicketService
	tags     *TagService
	events   *eventLog
	customer *domain.Customer
	agent    *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	storeTime := clock.Now()
	store := memory.NewStore(memory.WithClock(func() time.Time {
		storeTime = storeTime.Add(time.Second)
		return storeTime
	}))
	dispatcher := events.NewInMemoryDispatcher()
	log := &eventLog{}
	events.SubscribeAll(dispatcher, log.handle)

	customer := &domain.Customer{Name: "Ada Lovelace", Email: "ada@example.com"}
	require.NoError(t, store.Customers().Create(ctx, customer))
	agent := &domain.User{Name: "Grace Hopper", Email: "grace@example.com"}
	require.NoError(t, store.Users().Create(ctx, agent))

	return &fixture{
		store: store,
		clock: clock,
		tickets: NewTicketService(TicketDependencies{
			Store:      store,
			Dispatcher: dispatcher,
			Logger:     zap.NewNop(),
			Clock:      clock.Now,
		}),
		tags: NewTagService(TagDependencies{
			Store:      store,
			Dispatcher: dispatcher,
			Logger:     zap.NewNop(),
		}),
		events:   log,
		customer: customer,
		agent:    agent,
	}
}

func (f *fixture) createTicket(t *testing.T, status domain.TicketStatus, priority domain.TicketPriority, subject string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), TicketCreateInput{
		CustomerID:  f.customer.ID,
		Subject:     subject,
		Description: "Description of " + subject,
		Status:      string(status),
		Priority:    string(priority),
	})
	require.NoError(t, err)
	return ticket
}

func (f *fixture) setStatus(t *testing.T, ticketID int64, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	s := string(status)
	ticket, err := f.tickets.UpdateTicket(context.Background(), ticketID, TicketUpdateInput{Status: &s})
	require.NoError(t, err)
	return ticket
}

func (f *fixture) addUpdate(t *testing.T, ticketID int64, updateType domain.TicketUpdateType, body string) *domain.TicketUpdate {
	t.Helper()
	update, err := f.tickets.AddUpdate(context.Background(), ticketID, f.agent, AddUpdateInput{Body: body, Type: string(updateType)})
	require.NoError(t, err)
	return update
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(v int64) *int64 {
	return &v
}
