package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/deskops/support-desk/internal/api/dto"
	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/service"
)

// TagsHandler serves tag listing and ticket tagging.
type TagsHandler struct {
	service *service.TagService
}

// NewTagsHandler constructs handler.
func NewTagsHandler(tagService *service.TagService) *TagsHandler {
	return &TagsHandler{service: tagService}
}

// ListTags GET /api/tags.
func (h *TagsHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tagResponses(tags)})
}

// AttachTag PUT /api/tickets/:id/tags/:tag.
func (h *TagsHandler) AttachTag(c *fiber.Ctx) error {
	return h.mutate(c, h.service.AttachTag, "Tag attached successfully")
}

// DetachTag DELETE /api/tickets/:id/tags/:tag.
func (h *TagsHandler) DetachTag(c *fiber.Ctx) error {
	return h.mutate(c, h.service.DetachTag, "Tag detached successfully")
}

func (h *TagsHandler) mutate(c *fiber.Ctx, op func(ctx context.Context, ticketID, tagID int64) (*domain.Ticket, error), message string) error {
	ticketID, err := parseID(c, "id", "ticket")
	if err != nil {
		return err
	}
	tagID, err := parseID(c, "tag", "tag")
	if err != nil {
		return err
	}
	ticket, err := op(c.UserContext(), ticketID, tagID)
	if err != nil {
		return err
	}
	return c.JSON(dto.TagActionResponse{Message: message, Ticket: ticketResponse(ticket)})
}
