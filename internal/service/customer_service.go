package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/repository"
)

// CustomerService registers the customers tickets belong to.
type CustomerService struct {
	store  repository.Store
	logger *zap.Logger
}

// CustomerCreateInput describes a new customer.
type CustomerCreateInput struct {
	Name              string
	Email             string
	ExternalReference *string
}

// NewCustomerService constructs the service.
func NewCustomerService(store repository.Store, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{store: store, logger: logger}
}

// CreateCustomer persists a customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, input CustomerCreateInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		Name:              strings.TrimSpace(input.Name),
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		ExternalReference: input.ExternalReference,
	}
	if err := s.store.Customers().Create(ctx, customer); err != nil {
		return nil, logStoreError(s.logger, "create customer", err)
	}
	return customer, nil
}

// GetCustomer loads a customer by id.
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := s.store.Customers().GetByID(ctx, id)
	if err != nil {
		return nil, logStoreError(s.logger, "get customer", notFoundAs(err, "customer", id))
	}
	return customer, nil
}
