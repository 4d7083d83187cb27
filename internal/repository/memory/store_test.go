package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/repository"
	apperrors "github.com/deskops/support-desk/pkg/util/errorutil"
)

func steppingClock() func() time.Time {
	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func seedTicket(t *testing.T, store *Store, customerID int64, subject string, status domain.TicketStatus, priority domain.TicketPriority) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		CustomerID:  customerID,
		Subject:     subject,
		Description: "details for " + subject,
		Status:      status,
		Priority:    priority,
		OpenedAt:    time.Now(),
	}
	require.NoError(t, store.Tickets().Create(context.Background(), ticket))
	return ticket
}

func TestTicketCreateRequiresCustomer(t *testing.T) {
	store := NewStore()
	err := store.Tickets().Create(context.Background(), &domain.Ticket{CustomerID: 42, Subject: "x"})
	assert.ErrorIs(t, err, apperrors.ErrReferenceMissing)
}

func TestTicketGetByIDLoadsRelations(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	customer := &domain.Customer{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, store.Customers().Create(ctx, customer))
	agent := &domain.User{Name: "Grace", Email: "grace@example.com"}
	require.NoError(t, store.Users().Create(ctx, agent))

	ticket := seedTicket(t, store, customer.ID, "Printer", domain.TicketStatusOpen, domain.TicketPriorityLow)
	ticket.AssignedUserID = &agent.ID
	require.NoError(t, store.Tickets().Update(ctx, ticket))

	loaded, err := store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Customer)
	require.NotNil(t, loaded.AssignedUser)
	assert.Equal(t, "Ada", loaded.Customer.Name)
	assert.Equal(t, "Grace", loaded.AssignedUser.Name)

	_, err = store.Tickets().GetByID(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	customer := &domain.Customer{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, store.Customers().Create(ctx, customer))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		ticket := &domain.Ticket{CustomerID: customer.ID, Subject: "rolled back", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow}
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	tickets, total, err := store.Tickets().List(ctx, repository.TicketQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, tickets)
}

func TestWithinTxHidesUncommittedWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	customer := &domain.Customer{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, store.Customers().Create(ctx, customer))
	agent := &domain.User{Name: "Grace", Email: "grace@example.com"}
	require.NoError(t, store.Users().Create(ctx, agent))
	ticket := seedTicket(t, store, customer.ID, "Login", domain.TicketStatusResolved, domain.TicketPriorityHigh)

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Updates().Create(ctx, &domain.TicketUpdate{
			TicketID:        ticket.ID,
			CreatedByUserID: agent.ID,
			Body:            "still broken",
			Type:            domain.UpdateTypeComment,
		}))

		inside, err := tx.Updates().ListByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Len(t, inside, 1)

		outside, err := store.Updates().ListByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Empty(t, outside)
		return boom
	})
	require.ErrorIs(t, err, boom)

	updates, err := store.Updates().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, updates)

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Store) error {
		loaded, err := tx.Tickets().GetForUpdate(ctx, ticket.ID)
		if err != nil {
			return err
		}
		loaded.Status = domain.TicketStatusOpen
		if err := tx.Tickets().Update(ctx, loaded); err != nil {
			return err
		}

		committed, err := store.Tickets().GetByID(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusResolved, committed.Status)
		return nil
	}))

	reloaded, err := store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, reloaded.Status)
}

func TestConcurrentAttachInsertsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	customer := &domain.Customer{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, store.Customers().Create(ctx, customer))
	ticket := seedTicket(t, store, customer.ID, "Login", domain.TicketStatusOpen, domain.TicketPriorityHigh)
	tag := &domain.Tag{Name: "bug"}
	require.NoError(t, store.Tags().Upsert(ctx, tag))

	const workers = 16
	var (
		wg       sync.WaitGroup
		inserted atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			attached, err := store.Tags().Attach(ctx, ticket.ID, tag.ID)
			assert.NoError(t, err)
			if attached {
				inserted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inserted.Load())
	tags, err := store.Tags().ListByTickets(ctx, []int64{ticket.ID})
	require.NoError(t, err)
	assert.Len(t, tags[ticket.ID], 1)
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	err := store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Customers().Create(ctx, &domain.Customer{Name: "Ada", Email: "ada@example.com"})
	})
	require.NoError(t, err)

	customer, err := store.Customers().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", customer.Name)
}

func TestTagAttachDetachReportsChange(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	customer := &domain.Customer{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, store.Customers().Create(ctx, customer))
	ticket := seedTicket(t, store, customer.ID, "Login", domain.TicketStatusOpen, domain.TicketPriorityHigh)
	tag := &domain.Tag{Name: "bug", Colour: "#ff6b6b"}
	require.NoError(t, store.Tags().Upsert(ctx, tag))

	attached, err := store.Tags().Attach(ctx, ticket.ID, tag.ID)
	require.NoError(t, err)
	assert.True(t, attached)

	attached, err = store.Tags().Attach(ctx, ticket.ID, tag.ID)
	require.NoError(t, err)
	assert.False(t, attached)

	tags, err := store.Tags().ListByTickets(ctx, []int64{ticket.ID})
	require.NoError(t, err)
	assert.Len(t, tags[ticket.ID], 1)

	detached, err := store.Tags().Detach(ctx, ticket.ID, tag.ID)
	require.NoError(t, err)
	assert.True(t, detached)

	detached, err = store.Tags().Detach(ctx, ticket.ID, tag.ID)
	require.NoError(t, err)
	assert.False(t, detached)

	_, err = store.Tags().Attach(ctx, ticket.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrReferenceMissing)
}

func TestTagUpsertIsIdempotentByName(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	first := &domain.Tag{Name: "bug", Colour: "#000000"}
	require.NoError(t, store.Tags().Upsert(ctx, first))
	second := &domain.Tag{Name: "bug", Colour: "#ff6b6b"}
	require.NoError(t, store.Tags().Upsert(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	tags, err := store.Tags().List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "#ff6b6b", tags[0].Colour)
}

func TestTicketListFiltersSortsAndPaginates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithClock(steppingClock()))
	ada := &domain.Customer{Name: "Ada", Email: "ada@example.com"}
	bob := &domain.Customer{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, store.Customers().Create(ctx, ada))
	require.NoError(t, store.Customers().Create(ctx, bob))

	low := seedTicket(t, store, ada.ID, "Printer jam", domain.TicketStatusOpen, domain.TicketPriorityLow)
	urgent := seedTicket(t, store, ada.ID, "Site down", domain.TicketStatusInProgress, domain.TicketPriorityUrgent)
	high := seedTicket(t, store, bob.ID, "50%_off coupon", domain.TicketStatusResolved, domain.TicketPriorityHigh)

	tag := &domain.Tag{Name: "bug"}
	require.NoError(t, store.Tags().Upsert(ctx, tag))
	_, err := store.Tags().Attach(ctx, urgent.ID, tag.ID)
	require.NoError(t, err)

	ids := func(tickets []domain.Ticket) []int64 {
		out := make([]int64, 0, len(tickets))
		for _, ticket := range tickets {
			out = append(out, ticket.ID)
		}
		return out
	}

	t.Run("default order is created_at", func(t *testing.T) {
		tickets, total, err := store.Tickets().List(ctx, repository.TicketQuery{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, []int64{low.ID, urgent.ID, high.ID}, ids(tickets))
	})

	t.Run("priority desc uses severity", func(t *testing.T) {
		tickets, _, err := store.Tickets().List(ctx, repository.TicketQuery{SortBy: repository.SortByPriority, SortDesc: true, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []int64{urgent.ID, high.ID, low.ID}, ids(tickets))
	})

	t.Run("customer filter", func(t *testing.T) {
		tickets, total, err := store.Tickets().List(ctx, repository.TicketQuery{CustomerID: &bob.ID, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, []int64{high.ID}, ids(tickets))
	})

	t.Run("tag by name", func(t *testing.T) {
		name := "bug"
		tickets, _, err := store.Tickets().List(ctx, repository.TicketQuery{TagName: &name, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []int64{urgent.ID}, ids(tickets))
	})

	t.Run("search is literal and case-insensitive", func(t *testing.T) {
		term := "50%_OFF"
		tickets, _, err := store.Tickets().List(ctx, repository.TicketQuery{Search: &term, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []int64{high.ID}, ids(tickets))

		wildcard := "%"
		tickets, _, err = store.Tickets().List(ctx, repository.TicketQuery{Search: &wildcard, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []int64{high.ID}, ids(tickets))
	})

	t.Run("pagination keeps total", func(t *testing.T) {
		tickets, total, err := store.Tickets().List(ctx, repository.TicketQuery{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, []int64{high.ID}, ids(tickets))
	})
}

func TestUpdatesListedInCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithClock(steppingClock()))
	customer := &domain.Customer{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, store.Customers().Create(ctx, customer))
	agent := &domain.User{Name: "Grace", Email: "grace@example.com"}
	require.NoError(t, store.Users().Create(ctx, agent))
	ticket := seedTicket(t, store, customer.ID, "Login", domain.TicketStatusOpen, domain.TicketPriorityHigh)

	for _, body := range []string{"first", "second"} {
		require.NoError(t, store.Updates().Create(ctx, &domain.TicketUpdate{
			TicketID:        ticket.ID,
			CreatedByUserID: agent.ID,
			Body:            body,
			Type:            domain.UpdateTypeComment,
		}))
	}

	updates, err := store.Updates().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "first", updates[0].Body)
	assert.Equal(t, "second", updates[1].Body)
	require.NotNil(t, updates[0].CreatedBy)
	assert.Equal(t, "Grace", updates[0].CreatedBy.Name)

	err = store.Updates().Create(ctx, &domain.TicketUpdate{TicketID: ticket.ID, CreatedByUserID: 77, Body: "x", Type: domain.UpdateTypeComment})
	assert.ErrorIs(t, err, apperrors.ErrReferenceMissing)
}
