// Package memory provides a process-local repository.Store. It backs the
// service when no Postgres DSN is configured and doubles as the store for
// service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/repository"
)

type ticketTag struct {
	ticketID int64
	tagID    int64
}

type dataset struct {
	customers  map[int64]domain.Customer
	users      map[int64]domain.User
	tickets    map[int64]domain.Ticket
	updates    []domain.TicketUpdate
	tags       map[int64]domain.Tag
	ticketTags map[ticketTag]struct{}
	nextID     map[string]int64
}

func newDataset() dataset {
	return dataset{
		customers:  map[int64]domain.Customer{},
		users:      map[int64]domain.User{},
		tickets:    map[int64]domain.Ticket{},
		tags:       map[int64]domain.Tag{},
		ticketTags: map[ticketTag]struct{}{},
		nextID:     map[string]int64{},
	}
}

func (d dataset) clone() dataset {
	out := newDataset()
	for k, v := range d.customers {
		out.customers[k] = v
	}
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.tickets {
		out.tickets[k] = v
	}
	out.updates = append(out.updates, d.updates...)
	for k, v := range d.tags {
		out.tags[k] = v
	}
	for k := range d.ticketTags {
		out.ticketTags[k] = struct{}{}
	}
	for k, v := range d.nextID {
		out.nextID[k] = v
	}
	return out
}

func (d *dataset) id(table string) int64 {
	d.nextID[table]++
	return d.nextID[table]
}

type state struct {
	// txMu serializes writers; a transaction holds it until commit or rollback.
	txMu sync.Mutex
	mu   sync.Mutex
	data dataset
	now  func() time.Time
}

// Store is a mutex-guarded in-memory repository.Store.
type Store struct {
	state *state
	// tx is the private working copy of an open transaction.
	tx *dataset
}

// Option customises a Store.
type Option func(*state)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *state) {
		s.now = now
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	st := &state{data: newDataset(), now: time.Now}
	for _, opt := range opts {
		opt(st)
	}
	return &Store{state: st}
}

func (s *Store) Customers() repository.CustomerRepository {
	return &customerRepository{store: s}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) Tickets() repository.TicketRepository {
	return &ticketRepository{store: s}
}

func (s *Store) Updates() repository.TicketUpdateRepository {
	return &ticketUpdateRepository{store: s}
}

func (s *Store) Tags() repository.TagRepository {
	return &tagRepository{store: s}
}

// WithinTx runs fn against a copy of the dataset and publishes the copy only
// when fn succeeds. Readers outside the transaction keep seeing the last
// committed state.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state.txMu.Lock()
	defer s.state.txMu.Unlock()

	s.state.mu.Lock()
	working := s.state.data.clone()
	s.state.mu.Unlock()

	if err := fn(&Store{state: s.state, tx: &working}); err != nil {
		return err
	}

	s.state.mu.Lock()
	s.state.data = working
	s.state.mu.Unlock()
	return nil
}

func (s *Store) read(fn func(d *dataset) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return fn(&s.state.data)
}

func (s *Store) write(fn func(d *dataset, now time.Time) error) error {
	if s.tx != nil {
		return fn(s.tx, s.state.now())
	}
	s.state.txMu.Lock()
	defer s.state.txMu.Unlock()
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return fn(&s.state.data, s.state.now())
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
