package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/fastvite/todo-api/internal/database"
)

var ErrNotFound = errors.New("todo not found")

// Repository handles todo persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new todo owned by the given user
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, title string) (*Todo, error) {
	dbTodo := &database.Todo{
		UserID: userID,
		Title:  title,
	}

	_, err := r.db.NewInsert().
		Model(dbTodo).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return mapDBTodoToModel(dbTodo), nil
}

// GetByID retrieves a todo by id regardless of owner.
// Ownership is the service layer's concern.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Todo, error) {
	dbTodo := new(database.Todo)
	err := r.db.NewSelect().
		Model(dbTodo).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return mapDBTodoToModel(dbTodo), nil
}

// ListByUser returns the user's todos in creation order, paginated
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*Todo, error) {
	var dbTodos []*database.Todo
	err := r.db.NewSelect().
		Model(&dbTodos).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := make([]*Todo, 0, len(dbTodos))
	for _, dbTodo := range dbTodos {
		todos = append(todos, mapDBTodoToModel(dbTodo))
	}

	return todos, nil
}

// Update applies a patch to a todo and returns the updated record
func (r *Repository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Todo, error) {
	query := r.db.NewUpdate().
		Model((*database.Todo)(nil)).
		Set("updated_at = NOW()").
		Where("id = ?", id)

	if patch.Title != nil {
		query = query.Set("title = ?", *patch.Title)
	}
	if patch.Completed != nil {
		query = query.Set("completed = ?", *patch.Completed)
	}

	result, err := query.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes a todo. Hard delete; todos have no soft state.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Todo)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBTodoToModel converts database model to domain model
func mapDBTodoToModel(dbt *database.Todo) *Todo {
	return &Todo{
		ID:        dbt.ID,
		UserID:    dbt.UserID,
		Title:     dbt.Title,
		Completed: dbt.Completed,
		CreatedAt: dbt.CreatedAt,
		UpdatedAt: dbt.UpdatedAt,
	}
}
