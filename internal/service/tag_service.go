package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/deskops/support-desk/internal/cache"
	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/events"
	"github.com/deskops/support-desk/internal/repository"
	apperrors "github.com/deskops/support-desk/pkg/util/errorutil"
)

const (
	msgTagAlreadyAttached = "Tag is already attached to this ticket."
	msgTagNotAttached     = "Tag is not attached to this ticket."
)

// TagService attaches and detaches tags.
type TagService struct {
	store      repository.Store
	tags       cache.TagCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TagDependencies bundles collaborators for the tag service.
type TagDependencies struct {
	Store      repository.Store
	Cache      cache.TagCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTagService constructs the service.
func NewTagService(deps TagDependencies) *TagService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tagCache := deps.Cache
	if tagCache == nil {
		tagCache = cache.NopTagCache{}
	}
	return &TagService{
		store:      deps.Store,
		tags:       tagCache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// AttachTag links the tag to the ticket. Attaching a linked tag fails with
// INVALID_OPERATION.
func (s *TagService) AttachTag(ctx context.Context, ticketID, tagID int64) (*domain.Ticket, error) {
	return s.mutate(ctx, ticketID, tagID, events.EventTagAttached, func(tx repository.Store) error {
		attached, err := tx.Tags().Attach(ctx, ticketID, tagID)
		if err != nil {
			return err
		}
		if !attached {
			return apperrors.NewInvalidOperation(msgTagAlreadyAttached, map[string]any{"ticket_id": ticketID, "tag_id": tagID})
		}
		return nil
	})
}

// DetachTag unlinks the tag. Detaching a tag that is not linked fails with
// INVALID_OPERATION.
func (s *TagService) DetachTag(ctx context.Context, ticketID, tagID int64) (*domain.Ticket, error) {
	return s.mutate(ctx, ticketID, tagID, events.EventTagDetached, func(tx repository.Store) error {
		detached, err := tx.Tags().Detach(ctx, ticketID, tagID)
		if err != nil {
			return err
		}
		if !detached {
			return apperrors.NewInvalidOperation(msgTagNotAttached, map[string]any{"ticket_id": ticketID, "tag_id": tagID})
		}
		return nil
	})
}

func (s *TagService) mutate(ctx context.Context, ticketID, tagID int64, eventType events.EventType, apply func(repository.Store) error) (*domain.Ticket, error) {
	tag, err := s.resolveTag(ctx, tagID)
	if err != nil {
		return nil, logStoreError(s.logger, "resolve tag", err)
	}

	var ticket *domain.Ticket
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Tickets().GetByID(ctx, ticketID); err != nil {
			return notFoundAs(err, "ticket", ticketID)
		}
		if err := apply(tx); err != nil {
			return err
		}
		loaded, err := loadTicket(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		ticket = loaded
		return nil
	})
	if err != nil {
		return nil, logStoreError(s.logger, string(eventType), err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(eventType, ticketID, nil, events.TagPayload{
		TagID:   tag.ID,
		TagName: tag.Name,
	}))
	return ticket, nil
}

// resolveTag reads through the cache. Cache failures fall back to the store.
func (s *TagService) resolveTag(ctx context.Context, tagID int64) (*domain.Tag, error) {
	tag, err := s.tags.Get(ctx, tagID)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("tag cache read failed", zap.Int64("tag_id", tagID), zap.Error(err))
	}

	tag, err = s.store.Tags().GetByID(ctx, tagID)
	if err != nil {
		return nil, notFoundAs(err, "tag", tagID)
	}
	if err := s.tags.Set(ctx, tag); err != nil {
		s.logger.Warn("tag cache write failed", zap.Int64("tag_id", tagID), zap.Error(err))
	}
	return tag, nil
}

// ListTags returns every tag ordered by name.
func (s *TagService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.store.Tags().List(ctx)
	if err != nil {
		return nil, logStoreError(s.logger, "list tags", err)
	}
	return tags, nil
}

// SeedDefaultTags upserts the stock tag set and refreshes their cache entries.
func (s *TagService) SeedDefaultTags(ctx context.Context) ([]domain.Tag, error) {
	seeded := make([]domain.Tag, 0, len(domain.DefaultTags))
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		for _, def := range domain.DefaultTags {
			tag := def
			if err := tx.Tags().Upsert(ctx, &tag); err != nil {
				return err
			}
			seeded = append(seeded, tag)
		}
		return nil
	})
	if err != nil {
		return nil, logStoreError(s.logger, "seed tags", err)
	}
	for _, tag := range seeded {
		if err := s.tags.Delete(ctx, tag.ID); err != nil {
			s.logger.Warn("tag cache invalidation failed", zap.Int64("tag_id", tag.ID), zap.Error(err))
		}
	}
	return seeded, nil
}
