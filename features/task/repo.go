package task

import (
	"context"
	"database/sql"
)

type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	UpdateStatus(ctx context.Context, id, status, errMsg string) error
	MarkRetried(ctx context.Context, id string) error
	ListFailed(ctx context.Context) ([]Task, error)
	Count(ctx context.Context) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, t *Task) error {
	query := `INSERT INTO tasks (kind, owner, repo_name, pr_number, status) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, t.Kind, t.Owner, t.RepoName, t.PRNumber, t.Status).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Task, error) {
	query := `SELECT id, kind, owner, repo_name, pr_number, status, error, retries, created_at, updated_at FROM tasks WHERE id = $1`
	var t Task
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.Kind, &t.Owner, &t.RepoName, &t.PRNumber, &t.Status, &t.Error, &t.Retries, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	query := `UPDATE tasks SET status = $2, error = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status, errMsg)
	return err
}

func (r *PostgresRepo) MarkRetried(ctx context.Context, id string) error {
	query := `UPDATE tasks SET status = 'pending', error = '', retries = retries + 1, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *PostgresRepo) ListFailed(ctx context.Context) ([]Task, error) {
	query := `SELECT id, kind, owner, repo_name, pr_number, status, error, retries, created_at, updated_at FROM tasks WHERE status = 'failed' ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Kind, &t.Owner, &t.RepoName, &t.PRNumber, &t.Status, &t.Error, &t.Retries, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count)
	return count, err
}
