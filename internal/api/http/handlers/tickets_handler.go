package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/deskops/support-desk/internal/api/dto"
	"github.com/deskops/support-desk/internal/auth"
	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/service"
	apperrors "github.com/deskops/support-desk/pkg/util/errorutil"
)

// TicketsHandler serves ticket endpoints.
type TicketsHandler struct {
	service        *service.TicketService
	defaultPerPage int
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, defaultPerPage int) *TicketsHandler {
	if defaultPerPage <= 0 {
		defaultPerPage = 15
	}
	return &TicketsHandler{service: ticketService, defaultPerPage: defaultPerPage}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		CustomerID:     req.CustomerID,
		Subject:        req.Subject,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		AssignedUserID: req.AssignedUserID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filters := service.ListFilters{
		Status:         c.Query("status"),
		Priority:       c.Query("priority"),
		Tag:            c.Query("tag"),
		CustomerID:     c.Query("customer_id"),
		AssignedUserID: c.Query("assigned_user_id"),
		Search:         c.Query("search"),
		SortBy:         c.Query("sort_by"),
		SortOrder:      c.Query("sort_order"),
	}
	perPage := c.QueryInt("per_page", h.defaultPerPage)
	page := c.QueryInt("page", 1)

	result, err := h.service.ListTickets(c.UserContext(), filters, perPage, page)
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(result.Tickets))
	for i := range result.Tickets {
		items = append(items, ticketResponse(&result.Tickets[i]))
	}
	return c.JSON(dto.TicketListResponse{
		Data: items,
		Meta: dto.PageMeta{
			CurrentPage: result.CurrentPage,
			LastPage:    result.LastPage,
			PerPage:     result.PerPage,
			Total:       result.Total,
		},
		Links: pageLinks(c.BaseURL()+c.Path(), result.CurrentPage, result.LastPage),
	})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "ticket")
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id, auth.ViewerFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PATCH /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "ticket")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.AssignedUserID.Valid && req.AssignedUserID.Value <= 0 {
		return apperrors.NewValidationError("validation failed", map[string]any{
			"assigned_user_id": "The assigned_user_id field must be greater than 0.",
		})
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), id, service.TicketUpdateInput{
		Subject:         req.Subject,
		Description:     req.Description,
		Status:          req.Status,
		Priority:        req.Priority,
		AssignedUserSet: req.AssignedUserID.Set,
		AssignedUserID:  req.AssignedUserID.Ptr(),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AddUpdate POST /api/tickets/:id/updates. The author is the authenticated agent.
func (h *TicketsHandler) AddUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "ticket")
	if err != nil {
		return err
	}
	var req dto.CreateTicketUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var actor *domain.User
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actor = principal.User
	}
	update, err := h.service.AddUpdate(c.UserContext(), id, actor, service.AddUpdateInput{
		Body: req.Body,
		Type: req.Type,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketUpdateResponse(update)})
}

func pageLinks(base string, current, last int) dto.PageLinks {
	url := func(page int) string {
		return fmt.Sprintf("%s?page=%d", base, page)
	}
	links := dto.PageLinks{First: url(1), Last: url(last)}
	if current > 1 {
		prev := url(current - 1)
		links.Prev = &prev
	}
	if current < last {
		next := url(current + 1)
		links.Next = &next
	}
	return links
}
