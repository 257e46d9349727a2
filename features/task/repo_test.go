package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hreviewer/backend/features/task"
)

func TestPostgresRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(task.KindReview, "acme", "widgets", 17, task.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("task-1", now, now))

	repo := task.NewPostgresRepo(db)
	tk := &task.Task{Kind: task.KindReview, Owner: "acme", RepoName: "widgets", PRNumber: 17, Status: task.StatusPending}

	assert.NoError(t, repo.Create(context.Background(), tk))
	assert.Equal(t, "task-1", tk.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "kind", "owner", "repo_name", "pr_number", "status", "error", "retries", "created_at", "updated_at"}).
		AddRow("task-1", task.KindSummary, "acme", "widgets", 17, task.StatusFailed, "boom", 2, now, now)
	mock.ExpectQuery(`SELECT .* FROM tasks WHERE id`).
		WithArgs("task-1").
		WillReturnRows(rows)

	repo := task.NewPostgresRepo(db)
	tk, err := repo.Get(context.Background(), "task-1")

	assert.NoError(t, err)
	assert.Equal(t, task.KindSummary, tk.Kind)
	assert.Equal(t, "boom", tk.Error)
	assert.Equal(t, 2, tk.Retries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE tasks SET status`).
		WithArgs("task-1", task.StatusDone, "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := task.NewPostgresRepo(db)
	assert.NoError(t, repo.UpdateStatus(context.Background(), "task-1", task.StatusDone, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_MarkRetried(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE tasks SET status = 'pending'`).
		WithArgs("task-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := task.NewPostgresRepo(db)
	assert.NoError(t, repo.MarkRetried(context.Background(), "task-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ListFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "kind", "owner", "repo_name", "pr_number", "status", "error", "retries", "created_at", "updated_at"}).
		AddRow("task-1", task.KindReview, "acme", "widgets", 17, task.StatusFailed, "boom", 0, now, now).
		AddRow("task-2", task.KindSummary, "acme", "widgets", 18, task.StatusFailed, "bang", 1, now, now)
	mock.ExpectQuery(`SELECT .* FROM tasks WHERE status = 'failed'`).
		WillReturnRows(rows)

	repo := task.NewPostgresRepo(db)
	tasks, err := repo.ListFailed(context.Background())

	assert.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "task-1", tasks[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
