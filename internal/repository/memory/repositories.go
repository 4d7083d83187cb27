package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/repository"
	apperrors "github.com/deskops/support-desk/pkg/util/errorutil"
)

type customerRepository struct {
	store *Store
}

func (r *customerRepository) Create(_ context.Context, customer *domain.Customer) error {
	return r.store.write(func(d *dataset, now time.Time) error {
		customer.ID = d.id("customers")
		customer.CreatedAt = now
		customer.UpdatedAt = now
		stored := *customer
		stored.ExternalReference = cloneString(customer.ExternalReference)
		d.customers[customer.ID] = stored
		return nil
	})
}

func (r *customerRepository) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.store.read(func(d *dataset) error {
		customer, ok := d.customers[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &customer
		return nil
	})
	return out, err
}

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	return r.store.write(func(d *dataset, now time.Time) error {
		for _, existing := range d.users {
			if strings.EqualFold(existing.Email, user.Email) {
				return fmt.Errorf("users_email_unique: %w", apperrors.ErrDuplicate)
			}
		}
		user.ID = d.id("users")
		user.CreatedAt = now
		user.UpdatedAt = now
		d.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	var out *domain.User
	err := r.store.read(func(d *dataset) error {
		user, ok := d.users[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &user
		return nil
	})
	return out, err
}

type ticketRepository struct {
	store *Store
}

func (r *ticketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	return r.store.write(func(d *dataset, now time.Time) error {
		if err := checkTicketReferences(d, ticket); err != nil {
			return err
		}
		ticket.ID = d.id("tickets")
		ticket.CreatedAt = now
		ticket.UpdatedAt = now
		d.tickets[ticket.ID] = storedTicket(ticket)
		return nil
	})
}

func (r *ticketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	return r.store.write(func(d *dataset, now time.Time) error {
		current, ok := d.tickets[ticket.ID]
		if !ok {
			return apperrors.ErrNotFound
		}
		if err := checkTicketReferences(d, ticket); err != nil {
			return err
		}
		ticket.UpdatedAt = now
		next := storedTicket(ticket)
		next.CustomerID = current.CustomerID
		next.OpenedAt = current.OpenedAt
		next.CreatedAt = current.CreatedAt
		d.tickets[ticket.ID] = next
		return nil
	})
}

func (r *ticketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	var out *domain.Ticket
	err := r.store.read(func(d *dataset) error {
		ticket, ok := d.tickets[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = withRelations(d, ticket)
		return nil
	})
	return out, err
}

// GetForUpdate needs no row lock: writers already serialize on the store.
func (r *ticketRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *ticketRepository) List(_ context.Context, q repository.TicketQuery) ([]domain.Ticket, int, error) {
	var (
		page  []domain.Ticket
		total int
	)
	err := r.store.read(func(d *dataset) error {
		matched := make([]domain.Ticket, 0, len(d.tickets))
		for _, ticket := range d.tickets {
			if matchesQuery(d, ticket, q) {
				matched = append(matched, ticket)
			}
		}
		sortTickets(matched, q)
		total = len(matched)

		limit := q.Limit
		if limit <= 0 {
			limit = 15
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		page = []domain.Ticket{}
		for i := offset; i < len(matched) && i-offset < limit; i++ {
			page = append(page, *withRelations(d, matched[i]))
		}
		return nil
	})
	return page, total, err
}

func checkTicketReferences(d *dataset, ticket *domain.Ticket) error {
	if _, ok := d.customers[ticket.CustomerID]; !ok {
		return fmt.Errorf("tickets_customer_id_foreign: %w", apperrors.ErrReferenceMissing)
	}
	if ticket.AssignedUserID != nil {
		if _, ok := d.users[*ticket.AssignedUserID]; !ok {
			return fmt.Errorf("tickets_assigned_user_id_foreign: %w", apperrors.ErrReferenceMissing)
		}
	}
	return nil
}

func storedTicket(ticket *domain.Ticket) domain.Ticket {
	stored := *ticket
	stored.AssignedUserID = cloneInt64(ticket.AssignedUserID)
	stored.ResolvedAt = cloneTime(ticket.ResolvedAt)
	stored.Customer = nil
	stored.AssignedUser = nil
	stored.Tags = nil
	stored.Updates = nil
	return stored
}

func withRelations(d *dataset, ticket domain.Ticket) *domain.Ticket {
	out := ticket
	out.AssignedUserID = cloneInt64(ticket.AssignedUserID)
	out.ResolvedAt = cloneTime(ticket.ResolvedAt)
	if customer, ok := d.customers[ticket.CustomerID]; ok {
		c := customer
		out.Customer = &c
	}
	if ticket.AssignedUserID != nil {
		if user, ok := d.users[*ticket.AssignedUserID]; ok {
			u := user
			out.AssignedUser = &u
		}
	}
	return &out
}

func matchesQuery(d *dataset, ticket domain.Ticket, q repository.TicketQuery) bool {
	if q.Status != nil && ticket.Status != *q.Status {
		return false
	}
	if q.Priority != nil && ticket.Priority != *q.Priority {
		return false
	}
	if q.CustomerID != nil && ticket.CustomerID != *q.CustomerID {
		return false
	}
	if q.AssignedUserID != nil && (ticket.AssignedUserID == nil || *ticket.AssignedUserID != *q.AssignedUserID) {
		return false
	}
	if q.TagID != nil {
		if _, ok := d.ticketTags[ticketTag{ticketID: ticket.ID, tagID: *q.TagID}]; !ok {
			return false
		}
	} else if q.TagName != nil && !hasTagNamed(d, ticket.ID, *q.TagName) {
		return false
	}
	if q.Search != nil && *q.Search != "" {
		term := strings.ToLower(*q.Search)
		if !strings.Contains(strings.ToLower(ticket.Subject), term) &&
			!strings.Contains(strings.ToLower(ticket.Description), term) {
			return false
		}
	}
	return true
}

func hasTagNamed(d *dataset, ticketID int64, name string) bool {
	for pair := range d.ticketTags {
		if pair.ticketID != ticketID {
			continue
		}
		if tag, ok := d.tags[pair.tagID]; ok && tag.Name == name {
			return true
		}
	}
	return false
}

func sortTickets(tickets []domain.Ticket, q repository.TicketQuery) {
	compare := func(a, b domain.Ticket) int {
		switch q.SortBy {
		case repository.SortByPriority:
			return a.Priority.Rank() - b.Priority.Rank()
		case repository.SortByStatus:
			return a.Status.Rank() - b.Status.Rank()
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		c := compare(tickets[i], tickets[j])
		if q.SortDesc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return tickets[i].ID < tickets[j].ID
	})
}

type ticketUpdateRepository struct {
	store *Store
}

func (r *ticketUpdateRepository) Create(_ context.Context, update *domain.TicketUpdate) error {
	return r.store.write(func(d *dataset, now time.Time) error {
		if _, ok := d.tickets[update.TicketID]; !ok {
			return fmt.Errorf("ticket_updates_ticket_id_foreign: %w", apperrors.ErrReferenceMissing)
		}
		if _, ok := d.users[update.CreatedByUserID]; !ok {
			return fmt.Errorf("ticket_updates_created_by_user_id_foreign: %w", apperrors.ErrReferenceMissing)
		}
		update.ID = d.id("ticket_updates")
		update.CreatedAt = now
		update.UpdatedAt = now
		stored := *update
		stored.CreatedBy = nil
		stored.Ticket = nil
		d.updates = append(d.updates, stored)
		return nil
	})
}

func (r *ticketUpdateRepository) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketUpdate, error) {
	result := []domain.TicketUpdate{}
	err := r.store.read(func(d *dataset) error {
		for _, update := range d.updates {
			if update.TicketID != ticketID {
				continue
			}
			if user, ok := d.users[update.CreatedByUserID]; ok {
				u := user
				update.CreatedBy = &u
			}
			result = append(result, update)
		}
		return nil
	})
	return result, err
}

type tagRepository struct {
	store *Store
}

func (r *tagRepository) GetByID(_ context.Context, id int64) (*domain.Tag, error) {
	var out *domain.Tag
	err := r.store.read(func(d *dataset) error {
		tag, ok := d.tags[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &tag
		return nil
	})
	return out, err
}

func (r *tagRepository) List(_ context.Context) ([]domain.Tag, error) {
	var result []domain.Tag
	err := r.store.read(func(d *dataset) error {
		result = make([]domain.Tag, 0, len(d.tags))
		for _, tag := range d.tags {
			result = append(result, tag)
		}
		sortTags(result)
		return nil
	})
	return result, err
}

func (r *tagRepository) Upsert(_ context.Context, tag *domain.Tag) error {
	return r.store.write(func(d *dataset, now time.Time) error {
		for id, existing := range d.tags {
			if existing.Name == tag.Name {
				existing.Colour = tag.Colour
				existing.UpdatedAt = now
				d.tags[id] = existing
				*tag = existing
				return nil
			}
		}
		tag.ID = d.id("tags")
		tag.CreatedAt = now
		tag.UpdatedAt = now
		d.tags[tag.ID] = *tag
		return nil
	})
}

func (r *tagRepository) Attach(_ context.Context, ticketID, tagID int64) (bool, error) {
	attached := false
	err := r.store.write(func(d *dataset, _ time.Time) error {
		if _, ok := d.tickets[ticketID]; !ok {
			return fmt.Errorf("ticket_tag_ticket_id_foreign: %w", apperrors.ErrReferenceMissing)
		}
		if _, ok := d.tags[tagID]; !ok {
			return fmt.Errorf("ticket_tag_tag_id_foreign: %w", apperrors.ErrReferenceMissing)
		}
		key := ticketTag{ticketID: ticketID, tagID: tagID}
		if _, exists := d.ticketTags[key]; exists {
			return nil
		}
		d.ticketTags[key] = struct{}{}
		attached = true
		return nil
	})
	return attached, err
}

func (r *tagRepository) Detach(_ context.Context, ticketID, tagID int64) (bool, error) {
	detached := false
	err := r.store.write(func(d *dataset, _ time.Time) error {
		key := ticketTag{ticketID: ticketID, tagID: tagID}
		if _, exists := d.ticketTags[key]; !exists {
			return nil
		}
		delete(d.ticketTags, key)
		detached = true
		return nil
	})
	return detached, err
}

func (r *tagRepository) ListByTickets(_ context.Context, ticketIDs []int64) (map[int64][]domain.Tag, error) {
	result := make(map[int64][]domain.Tag, len(ticketIDs))
	err := r.store.read(func(d *dataset) error {
		wanted := make(map[int64]struct{}, len(ticketIDs))
		for _, id := range ticketIDs {
			wanted[id] = struct{}{}
		}
		for pair := range d.ticketTags {
			if _, ok := wanted[pair.ticketID]; !ok {
				continue
			}
			if tag, ok := d.tags[pair.tagID]; ok {
				result[pair.ticketID] = append(result[pair.ticketID], tag)
			}
		}
		for id := range result {
			sortTags(result[id])
		}
		return nil
	})
	return result, err
}

func sortTags(tags []domain.Tag) {
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Name != tags[j].Name {
			return tags[i].Name < tags[j].Name
		}
		return tags[i].ID < tags[j].ID
	})
}
