package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/scrumdesk/internal/model"
)

// PostgresScrumRepo はPostgreSQLを使用したスクラムリポジトリ。
type PostgresScrumRepo struct {
	db *sql.DB
}

// NewPostgresScrumRepo はPostgresScrumRepoを生成する。
func NewPostgresScrumRepo(db *sql.DB) *PostgresScrumRepo {
	return &PostgresScrumRepo{db: db}
}

// Create はスクラムを作成する。
func (r *PostgresScrumRepo) Create(ctx context.Context, scrum *model.Scrum) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scrums (id, name) VALUES ($1, $2)`,
		scrum.ID, scrum.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scrum: %w", err)
	}
	return nil
}

// FindByID は指定IDのスクラムを取得する。見つからない場合はnilを返す。
func (r *PostgresScrumRepo) FindByID(ctx context.Context, id string) (*model.Scrum, error) {
	scrum := &model.Scrum{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM scrums WHERE id = $1`,
		id,
	).Scan(&scrum.ID, &scrum.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find scrum by ID: %w", err)
	}

	return scrum, nil
}

// List は全スクラムを挿入順で返す。
func (r *PostgresScrumRepo) List(ctx context.Context) ([]*model.Scrum, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM scrums ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrums: %w", err)
	}
	defer rows.Close()

	var scrums []*model.Scrum
	for rows.Next() {
		scrum := &model.Scrum{}
		if err := rows.Scan(&scrum.ID, &scrum.Name); err != nil {
			return nil, fmt.Errorf("failed to scan scrum: %w", err)
		}
		scrums = append(scrums, scrum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scrums: %w", err)
	}

	return scrums, nil
}

// compile-time interface check
var _ ScrumRepository = (*PostgresScrumRepo)(nil)
