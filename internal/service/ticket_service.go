package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/events"
	"github.com/deskops/support-desk/internal/policy"
	"github.com/deskops/support-desk/internal/repository"
	apperrors "github.com/deskops/support-desk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CustomerID     int64
	Subject        string
	Description    string
	Status         string
	Priority       string
	AssignedUserID *int64
}

// TicketUpdateInput carries a partial update. Nil fields are left unchanged.
// AssignedUserSet distinguishes an explicit null (clear the assignment) from
// an absent field.
type TicketUpdateInput struct {
	Subject         *string
	Description     *string
	Status          *string
	Priority        *string
	AssignedUserSet bool
	AssignedUserID  *int64
}

// AddUpdateInput describes a new thread entry.
type AddUpdateInput struct {
	Body string
	Type string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// CreateTicket persists a new ticket. opened_at is stamped now; resolved_at
// stays empty even when the initial status is resolved.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	status := domain.TicketStatusOpen
	if input.Status != "" {
		parsed, err := domain.ParseTicketStatus(input.Status)
		if err != nil {
			return nil, invalidEnum("status", err)
		}
		status = parsed
	}
	priority := domain.TicketPriorityMedium
	if input.Priority != "" {
		parsed, err := domain.ParseTicketPriority(input.Priority)
		if err != nil {
			return nil, invalidEnum("priority", err)
		}
		priority = parsed
	}

	ticket := &domain.Ticket{
		CustomerID:     input.CustomerID,
		Subject:        strings.TrimSpace(input.Subject),
		Description:    strings.TrimSpace(input.Description),
		Status:         status,
		Priority:       priority,
		AssignedUserID: input.AssignedUserID,
		OpenedAt:       s.now(),
	}

	var created *domain.Ticket
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		loaded, err := tx.Tickets().GetByID(ctx, ticket.ID)
		if err != nil {
			return err
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, s.storeError("create ticket", err)
	}
	created.Tags = []domain.Tag{}

	s.publish(ctx, events.NewEvent(events.EventTicketCreated, created.ID, nil, events.TicketCreatedPayload{
		CustomerID: created.CustomerID,
		Status:     created.Status,
		Priority:   created.Priority,
		Subject:    created.Subject,
	}))
	return created, nil
}

// UpdateTicket applies a partial update and the resolved timestamp rule in a
// single transaction holding the ticket row lock.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID int64, input TicketUpdateInput) (*domain.Ticket, error) {
	var status *domain.TicketStatus
	if input.Status != nil {
		parsed, err := domain.ParseTicketStatus(*input.Status)
		if err != nil {
			return nil, invalidEnum("status", err)
		}
		status = &parsed
	}
	var priority *domain.TicketPriority
	if input.Priority != nil {
		parsed, err := domain.ParseTicketPriority(*input.Priority)
		if err != nil {
			return nil, invalidEnum("priority", err)
		}
		priority = &parsed
	}

	var (
		updated   *domain.Ticket
		oldStatus domain.TicketStatus
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := tx.Tickets().GetForUpdate(ctx, ticketID)
		if err != nil {
			return notFoundAs(err, "ticket", ticketID)
		}
		oldStatus = ticket.Status

		if input.Subject != nil {
			ticket.Subject = strings.TrimSpace(*input.Subject)
		}
		if input.Description != nil {
			ticket.Description = strings.TrimSpace(*input.Description)
		}
		if priority != nil {
			ticket.Priority = *priority
		}
		if input.AssignedUserSet {
			ticket.AssignedUserID = input.AssignedUserID
		}
		if status != nil {
			ticket.Status = *status
		}
		ticket.ResolvedAt = domain.DeriveResolvedAt(oldStatus, ticket.Status, ticket.ResolvedAt, s.now())

		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		loaded, err := loadTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		updated = loaded
		return nil
	})
	if err != nil {
		return nil, s.storeError("update ticket", err)
	}

	s.publish(ctx, events.NewEvent(events.EventTicketUpdated, updated.ID, nil, events.TicketUpdatedPayload{
		OldStatus: oldStatus,
		NewStatus: updated.Status,
	}))
	return updated, nil
}

// AddUpdate appends an entry to the ticket thread. A comment on a resolved or
// closed ticket reopens it in the same transaction.
func (s *TicketService) AddUpdate(ctx context.Context, ticketID int64, actor *domain.User, input AddUpdateInput) (*domain.TicketUpdate, error) {
	if actor == nil || actor.ID <= 0 {
		return nil, apperrors.NewUnauthorized("an authenticated agent is required to add updates")
	}
	updateType, err := domain.ParseTicketUpdateType(input.Type)
	if err != nil {
		return nil, invalidEnum("type", err)
	}

	update := &domain.TicketUpdate{
		TicketID:        ticketID,
		CreatedByUserID: actor.ID,
		Body:            input.Body,
		Type:            updateType,
	}

	var (
		reopened       bool
		previousStatus domain.TicketStatus
	)
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := tx.Tickets().GetForUpdate(ctx, ticketID)
		if err != nil {
			return notFoundAs(err, "ticket", ticketID)
		}
		if err := tx.Updates().Create(ctx, update); err != nil {
			return err
		}

		if update.IsComment() && ticket.IsResolvedOrClosed() {
			previousStatus = ticket.Status
			ticket.Status = domain.TicketStatusOpen
			ticket.ResolvedAt = nil
			if err := tx.Tickets().Update(ctx, ticket); err != nil {
				return err
			}
			reopened = true
		}

		creator, err := tx.Users().GetByID(ctx, actor.ID)
		if err != nil {
			return err
		}
		update.CreatedBy = creator
		update.Ticket = ticket
		return nil
	})
	if err != nil {
		return nil, s.storeError("add ticket update", err)
	}

	actorID := actor.ID
	s.publish(ctx, events.NewEvent(events.EventUpdateAdded, ticketID, &actorID, events.UpdateAddedPayload{
		UpdateID:    update.ID,
		UpdateType:  update.Type,
		BodyPreview: stringPreview(update.Body, 120),
	}))
	if reopened {
		s.publish(ctx, events.NewEvent(events.EventTicketReopened, ticketID, &actorID, events.TicketReopenedPayload{
			PreviousStatus: previousStatus,
			UpdateID:       update.ID,
		}))
	}
	return update, nil
}

// GetTicket loads a ticket with its customer, assignee, tags and the thread
// entries the viewer may see.
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64, viewer *policy.Viewer) (*domain.Ticket, error) {
	ticket, err := loadTicket(ctx, s.store, ticketID)
	if err != nil {
		return nil, s.storeError("get ticket", notFoundAs(err, "ticket", ticketID))
	}
	updates, err := s.store.Updates().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, s.storeError("list ticket updates", err)
	}
	ticket.Updates = policy.VisibleUpdates(updates, viewer)
	return ticket, nil
}

// loadTicket reads a ticket with its customer, assignee and tags.
func loadTicket(ctx context.Context, store repository.Store, ticketID int64) (*domain.Ticket, error) {
	ticket, err := store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	tags, err := store.Tags().ListByTickets(ctx, []int64{ticketID})
	if err != nil {
		return nil, err
	}
	ticket.Tags = tags[ticketID]
	if ticket.Tags == nil {
		ticket.Tags = []domain.Tag{}
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

func (s *TicketService) storeError(op string, err error) error {
	return logStoreError(s.logger, op, err)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// logStoreError logs failures that will surface as INTERNAL_ERROR. Domain
// errors and store sentinels pass through untouched.
func logStoreError(logger *zap.Logger, op string, err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrReferenceMissing) ||
		errors.Is(err, apperrors.ErrDuplicate) ||
		errors.Is(err, context.Canceled) {
		return err
	}
	logger.Error("store failure", zap.String("op", op), zap.Error(err))
	return apperrors.NewInternalError(err)
}

// notFoundAs turns a missing row into a NOT_FOUND error naming the resource.
func notFoundAs(err error, resource string, id int64) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

func invalidEnum(field string, err error) error {
	return apperrors.NewValidationError("validation failed", map[string]any{field: err.Error()})
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
