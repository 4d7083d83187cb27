package handlers

import (
	"github.com/deskops/support-desk/internal/api/dto"
	"github.com/deskops/support-desk/internal/domain"
)

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:             ticket.ID,
		Subject:        ticket.Subject,
		Description:    ticket.Description,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		AssignedUserID: ticket.AssignedUserID,
		OpenedAt:       ticket.OpenedAt,
		ResolvedAt:     ticket.ResolvedAt,
		Tags:           tagResponses(ticket.Tags),
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
	if ticket.Customer != nil {
		customer := customerResponse(ticket.Customer)
		resp.Customer = &customer
	}
	if ticket.AssignedUser != nil {
		user := userResponse(ticket.AssignedUser)
		resp.AssignedUser = &user
	}
	// nil means the thread was not loaded; an empty slice still renders
	if ticket.Updates != nil {
		updates := make([]dto.TicketUpdateResponse, 0, len(ticket.Updates))
		for i := range ticket.Updates {
			updates = append(updates, ticketUpdateResponse(&ticket.Updates[i]))
		}
		resp.Updates = &updates
	}
	return resp
}

func ticketUpdateResponse(update *domain.TicketUpdate) dto.TicketUpdateResponse {
	resp := dto.TicketUpdateResponse{
		ID:              update.ID,
		TicketID:        update.TicketID,
		CreatedByUserID: update.CreatedByUserID,
		Body:            update.Body,
		Type:            update.Type,
		CreatedAt:       update.CreatedAt,
		UpdatedAt:       update.UpdatedAt,
	}
	if update.CreatedBy != nil {
		user := userResponse(update.CreatedBy)
		resp.CreatedBy = &user
	}
	return resp
}

func tagResponses(tags []domain.Tag) []dto.TagResponse {
	resp := make([]dto.TagResponse, 0, len(tags))
	for _, tag := range tags {
		resp = append(resp, dto.TagResponse{ID: tag.ID, Name: tag.Name, Colour: tag.Colour})
	}
	return resp
}

func customerResponse(customer *domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:                customer.ID,
		Name:              customer.Name,
		Email:             customer.Email,
		ExternalReference: customer.ExternalReference,
		CreatedAt:         customer.CreatedAt,
		UpdatedAt:         customer.UpdatedAt,
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}
