package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskops/support-desk/internal/domain"
	apperrors "github.com/deskops/support-desk/pkg/util/errorutil"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// Store groups the entity repositories and scopes them to a transaction.
type Store interface {
	Customers() CustomerRepository
	Users() UserRepository
	Tickets() TicketRepository
	Updates() TicketUpdateRepository
	Tags() TagRepository
	// WithinTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// CustomerRepository persists customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}

// UserRepository persists agent identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// TicketRepository encapsulates ticket persistence. Returned tickets carry
// their customer and assigned user.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	// GetForUpdate loads the ticket and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, query TicketQuery) ([]domain.Ticket, int, error)
}

// TicketUpdateRepository stores the append-only ticket thread.
type TicketUpdateRepository interface {
	Create(ctx context.Context, update *domain.TicketUpdate) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketUpdate, error)
}

// TagRepository manages tags and the ticket_tag join.
type TagRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
	Upsert(ctx context.Context, tag *domain.Tag) error
	// Attach inserts the (ticket, tag) pair and reports false when it was
	// already present.
	Attach(ctx context.Context, ticketID, tagID int64) (bool, error)
	// Detach removes the pair and reports false when it was not present.
	Detach(ctx context.Context, ticketID, tagID int64) (bool, error)
	ListByTickets(ctx context.Context, ticketIDs []int64) (map[int64][]domain.Tag, error)
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewPostgresStore returns a Store backed by the pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool, db: pool}
}

func (s *postgresStore) Customers() CustomerRepository {
	return &customerRepository{db: s.db}
}

func (s *postgresStore) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *postgresStore) Tickets() TicketRepository {
	return &ticketRepository{db: s.db}
}

func (s *postgresStore) Updates() TicketUpdateRepository {
	return &ticketUpdateRepository{db: s.db}
}

func (s *postgresStore) Tags() TagRepository {
	return &tagRepository{db: s.db}
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		// already inside a transaction
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&postgresStore{db: tx})
	})
}

// mapError translates driver errors into the store sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, apperrors.ErrReferenceMissing)
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, apperrors.ErrDuplicate)
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
