package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/scrumdesk/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
//
// 監査履歴はtask_historyテーブルに行として保持する。書き込みはINSERTのみで、
// UPDATE/DELETEの経路は存在しない（追記専用の台帳）。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// Create はタスクとシード済み履歴を同一トランザクションで永続化する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, scrum_id, assigned_to)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		task.ID, task.Title, task.Description, string(task.Status), task.ScrumID, task.AssignedTo,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	for _, entry := range task.History {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO task_history (task_id, status, recorded_on)
			 VALUES ($1, $2, $3::date)`,
			task.ID, string(entry.Status), entry.Date,
		)
		if err != nil {
			return fmt.Errorf("failed to insert history entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDのタスクを履歴付きで取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	task := &model.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, status, scrum_id, assigned_to
		 FROM tasks WHERE id = $1`,
		id,
	).Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.ScrumID, &task.AssignedTo)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}

	histories, err := r.loadHistories(ctx, []string{task.ID})
	if err != nil {
		return nil, err
	}
	task.History = histories[task.ID]

	return task, nil
}

// List はフィルタに一致するタスク一覧を履歴付き・挿入順で返す。
func (r *PostgresTaskRepo) List(ctx context.Context, filter TaskFilter) ([]*model.Task, error) {
	query := `SELECT id, title, description, status, scrum_id, assigned_to FROM tasks`
	args := []any{}
	switch {
	case filter.AssignedTo != "" && filter.ScrumID != "":
		query += ` WHERE assigned_to = $1 AND scrum_id = $2`
		args = append(args, filter.AssignedTo, filter.ScrumID)
	case filter.AssignedTo != "":
		query += ` WHERE assigned_to = $1`
		args = append(args, filter.AssignedTo)
	case filter.ScrumID != "":
		query += ` WHERE scrum_id = $1`
		args = append(args, filter.ScrumID)
	}
	query += ` ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	var ids []string
	for rows.Next() {
		task := &model.Task{}
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.ScrumID, &task.AssignedTo); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
		ids = append(ids, task.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	if len(tasks) == 0 {
		return tasks, nil
	}

	histories, err := r.loadHistories(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		task.History = histories[task.ID]
	}

	return tasks, nil
}

// AppendHistory は現在日付の履歴エントリを1件追記する。
// taskIDが未知の場合はTASK_NOT_FOUNDのエラーを返す。
func (r *PostgresTaskRepo) AppendHistory(ctx context.Context, taskID string, status model.Status) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO task_history (task_id, status, recorded_on)
		 SELECT id, $2, CURRENT_DATE FROM tasks WHERE id = $1`,
		taskID, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewTaskNotFoundError(taskID)
	}
	return nil
}

// UpdateStatus はステータス更新と履歴追記を同一トランザクションで実行し、
// 更新後のタスクを返す。taskIDが未知の場合はTASK_NOT_FOUNDのエラーを返す。
func (r *PostgresTaskRepo) UpdateStatus(ctx context.Context, taskID string, status model.Status) (*model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE tasks SET status = $2 WHERE id = $1`,
		taskID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, model.NewTaskNotFoundError(taskID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO task_history (task_id, status, recorded_on)
		 VALUES ($1, $2, CURRENT_DATE)`,
		taskID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append history entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.FindByID(ctx, taskID)
}

// loadHistories は指定タスク群の履歴を追記順で一括取得する。
func (r *PostgresTaskRepo) loadHistories(ctx context.Context, taskIDs []string) (map[string][]model.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id, status, to_char(recorded_on, 'YYYY-MM-DD')
		 FROM task_history WHERE task_id = ANY($1) ORDER BY seq`,
		pq.Array(taskIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load task history: %w", err)
	}
	defer rows.Close()

	histories := make(map[string][]model.HistoryEntry, len(taskIDs))
	for rows.Next() {
		var taskID string
		var entry model.HistoryEntry
		if err := rows.Scan(&taskID, &entry.Status, &entry.Date); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		histories[taskID] = append(histories[taskID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history entries: %w", err)
	}

	return histories, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
