package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deskops/support-desk/internal/auth"
	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/repository"
	apperrors "github.com/deskops/support-desk/pkg/util/errorutil"
)

// AgentService registers agents and mints their bearer tokens. Identity is
// managed out of band; the API itself only verifies tokens.
type AgentService struct {
	store    repository.Store
	tokenMgr *auth.TokenManager
	logger   *zap.Logger
}

// NewAgentService builds the service.
func NewAgentService(store repository.Store, tokenMgr *auth.TokenManager, logger *zap.Logger) *AgentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentService{store: store, tokenMgr: tokenMgr, logger: logger}
}

// CreateAgent registers an agent user.
func (s *AgentService) CreateAgent(ctx context.Context, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"name": "required", "email": "required"})
	}

	user := &domain.User{Name: name, Email: email}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, logStoreError(s.logger, "create agent", err)
	}
	return user, nil
}

// IssueToken signs a bearer token for an existing agent.
func (s *AgentService) IssueToken(ctx context.Context, agentID int64) (string, time.Time, error) {
	if _, err := s.store.Users().GetByID(ctx, agentID); err != nil {
		return "", time.Time{}, logStoreError(s.logger, "get agent", notFoundAs(err, "agent", agentID))
	}
	return s.tokenMgr.GenerateToken(agentID)
}
