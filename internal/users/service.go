package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/greenloop/greenloop/internal/rbac"
	"github.com/greenloop/greenloop/internal/shared"
)

// RepositoryPort abstracts persistence so the service can be tested
// with stubs.
type RepositoryPort interface {
	ListUsers(ctx context.Context, limit, offset int) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, email, name, role, passwordHash string) (int64, error)
	SetRole(ctx context.Context, id int64, role string) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// AuditPort records administrative actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements user administration.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns a page of users plus pagination metadata.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	list, total, err := s.repo.ListUsers(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list users: %w", err)
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// Get returns a single user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// Create registers a new account with a hashed password.
func (s *Service) Create(ctx context.Context, actorID int64, email, name, role, password string) (int64, error) {
	if _, ok := rbac.ParseRole(role); !ok {
		return 0, fmt.Errorf("users: unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.repo.CreateUser(ctx, email, name, role, string(hash))
	if err != nil {
		return 0, err
	}
	s.recordAudit(ctx, actorID, "user.create", id, map[string]any{"email": email, "role": role})
	return id, nil
}

// ChangeRole assigns a new role to the account. The role must be one of
// the registered roles; unknown names are rejected before touching the
// database.
func (s *Service) ChangeRole(ctx context.Context, actorID, userID int64, role string) error {
	parsed, ok := rbac.ParseRole(role)
	if !ok {
		return fmt.Errorf("users: unknown role %q", role)
	}
	before, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.SetRole(ctx, userID, string(parsed)); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "user.role_change", userID, map[string]any{
		"from": before.Role,
		"to":   string(parsed),
	})
	return nil
}

// SetActive activates or deactivates an account.
func (s *Service) SetActive(ctx context.Context, actorID, userID int64, active bool) error {
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	action := "user.deactivate"
	if active {
		action = "user.activate"
	}
	s.recordAudit(ctx, actorID, action, userID, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, userID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
