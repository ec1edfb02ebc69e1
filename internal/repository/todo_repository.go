package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/todo-list-service/internal/model"
)

// TodoRepo persists rows of the 'todos' table.
type TodoRepo struct{ DB *sql.DB }

func NewTodoRepo(db *sql.DB) *TodoRepo { return &TodoRepo{DB: db} }

const todoColumns = "id,task_content,is_completed,priority,user_id,created_at"

// Create inserts a todo for the given owner and returns the stored row.
// The priority must already be normalized by the caller.
func (r *TodoRepo) Create(ctx context.Context, userID uint64, taskContent, priority string) (model.Todo, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO todos (task_content, priority, user_id) VALUES (?,?,?)",
		taskContent, priority, userID)
	if err != nil {
		return model.Todo{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Todo{}, err
	}
	// Re-read so created_at reflects the database clock.
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a single todo by id.
func (r *TodoRepo) GetByID(ctx context.Context, id uint64) (model.Todo, error) {
	var t model.Todo
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.TaskContent, &t.IsCompleted, &t.Priority, &t.UserID, &t.CreatedAt)
	return t, err
}

// ListByOwner returns all todos owned by userID, oldest first.
func (r *TodoRepo) ListByOwner(ctx context.Context, userID uint64) ([]model.Todo, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Todo
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.TaskContent, &t.IsCompleted, &t.Priority, &t.UserID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update persists the mutable fields of a todo.  Callers check existence
// via GetByID first; the driver reports changed rows rather than matched
// rows, so zero affected rows here just means the values were already
// stored and is not an error.
func (r *TodoRepo) Update(ctx context.Context, t model.Todo) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE todos SET task_content=?, is_completed=?, priority=? WHERE id=?",
		t.TaskContent, t.IsCompleted, t.Priority, t.ID)
	return err
}

// DeleteByID removes a todo.  sql.ErrNoRows is returned for a missing row.
func (r *TodoRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM todos WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAllWithOwner returns every todo joined with its owner's username, for
// the admin panel.
func (r *TodoRepo) ListAllWithOwner(ctx context.Context) ([]model.TodoWithOwner, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.task_content, t.is_completed, t.priority, t.user_id, t.created_at, u.username
		FROM todos t
		JOIN users u ON u.id = t.user_id
		ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TodoWithOwner
	for rows.Next() {
		var t model.TodoWithOwner
		if err := rows.Scan(&t.ID, &t.TaskContent, &t.IsCompleted, &t.Priority, &t.UserID, &t.CreatedAt, &t.Username); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Counts returns the total number of todos and how many are completed.
func (r *TodoRepo) Counts(ctx context.Context) (total, completed uint64, err error) {
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(is_completed), 0) FROM todos").Scan(&total, &completed)
	return total, completed, err
}
