package todo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/fastvite/todo-api/internal/logging"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrForbidden     = errors.New("todo belongs to another user")
	ErrEmptyPatch    = errors.New("patch must change at least one field")
)

const defaultPageSize = 20

// TodoRepository is the persistence surface the service needs.
// Satisfied by *Repository; tests substitute a fake.
type TodoRepository interface {
	Create(ctx context.Context, userID uuid.UUID, title string) (*Todo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Todo, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*Todo, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Todo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service enforces ownership and validation for todos.
// Every operation takes the verified caller id; a todo is only visible or
// mutable through its owner.
type Service struct {
	repo        TodoRepository
	logger      *logging.Logger
	maxPageSize int
}

func NewService(repo TodoRepository, logger *logging.Logger, maxPageSize int) *Service {
	return &Service{
		repo:        repo,
		logger:      logger,
		maxPageSize: maxPageSize,
	}
}

// List returns the caller's todos ordered by creation time ascending.
// A zero limit falls back to the default page size; limits above the
// configured maximum are clamped, not rejected.
func (s *Service) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*Todo, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	return s.repo.ListByUser(ctx, userID, offset, limit)
}

// Create persists a new todo owned by the caller
func (s *Service) Create(ctx context.Context, userID uuid.UUID, title string) (*Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	created, err := s.repo.Create(ctx, userID, title)
	if err != nil {
		return nil, err
	}

	s.logger.Info("todo created", "todo_id", created.ID, "user_id", userID)

	return created, nil
}

// Update applies a patch to the caller's todo.
// Returns ErrNotFound if the todo does not exist and ErrForbidden if it
// exists but belongs to someone else; the API layer chooses how much of
// that distinction to reveal.
func (s *Service) Update(ctx context.Context, userID, todoID uuid.UUID, patch Patch) (*Todo, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, ErrTitleRequired
		}
		patch.Title = &trimmed
	}

	if err := s.authorize(ctx, userID, todoID); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, todoID, patch)
}

// Delete removes the caller's todo, with the same ownership semantics as Update
func (s *Service) Delete(ctx context.Context, userID, todoID uuid.UUID) error {
	if err := s.authorize(ctx, userID, todoID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, todoID); err != nil {
		return err
	}

	s.logger.Info("todo deleted", "todo_id", todoID, "user_id", userID)

	return nil
}

// authorize checks that the todo exists and is owned by the caller
func (s *Service) authorize(ctx context.Context, userID, todoID uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, todoID)
	if err != nil {
		return err
	}

	if existing.UserID != userID {
		return ErrForbidden
	}

	return nil
}
