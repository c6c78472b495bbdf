// Package scrum はスクラム管理のドメインロジックを提供する。
package scrum

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/scrumdesk/internal/metrics"
	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/repository"
)

// TextSanitizer はユーザー入力のサニタイズインターフェース。
type TextSanitizer interface {
	SanitizeText(input string) string
}

// TaskInput はスクラム作成時に同時作成する初期タスクの入力。
type TaskInput struct {
	Title       string
	Description string
	Status      model.Status
	AssignedTo  string
}

// Details はスクラムとその所属タスクの詳細ビュー。
type Details struct {
	Scrum *model.Scrum
	Tasks []*model.Task
}

// Service はスクラム管理のサービス層。
type Service struct {
	scrumRepo repository.ScrumRepository
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	sanitizer TextSanitizer
	collector metrics.MetricsCollector // nilの場合は記録しない
}

// NewService はServiceの新しいインスタンスを生成する。collectorはnilを許容する。
func NewService(
	scrumRepo repository.ScrumRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	sanitizer TextSanitizer,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		scrumRepo: scrumRepo,
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		sanitizer: sanitizer,
		collector: collector,
	}
}

// CreateScrumWithTask はスクラムと初期タスクを2段階で作成する。
//
// 2つの作成はアトミックではない。検証はすべて最初の書き込みの前に行い、
// 検証起因の部分状態を作らないが、スクラム作成成功後にタスク作成が
// ストア障害で失敗した場合は孤児スクラムが残る。その場合は
// model.CompositeErrorで両方の結果（作成済みスクラムと失敗原因）を
// 呼び出し側へ報告する。成功を装ったり作成済みスクラムを隠したりしない。
func (s *Service) CreateScrumWithTask(ctx context.Context, scrumName string, task TaskInput) (*model.Scrum, *model.Task, error) {
	scrumName = s.sanitizer.SanitizeText(scrumName)
	title := s.sanitizer.SanitizeText(task.Title)
	description := s.sanitizer.SanitizeText(task.Description)

	// 全入力の検証をストア書き込みの前に済ませる
	if scrumName == "" {
		return nil, nil, model.NewValidationError("スクラム名は必須です")
	}
	if title == "" {
		return nil, nil, model.NewValidationError("タスクのタイトルは必須です")
	}
	if description == "" {
		return nil, nil, model.NewValidationError("タスクの説明は必須です")
	}
	if !model.ValidStatus(task.Status) {
		return nil, nil, model.NewInvalidStatusError(string(task.Status))
	}
	if task.AssignedTo == "" {
		return nil, nil, model.NewValidationError("タスクの担当者は必須です")
	}

	assignee, err := s.userRepo.FindByID(ctx, task.AssignedTo)
	if err != nil {
		return nil, nil, fmt.Errorf("担当者の確認に失敗しました: %w", err)
	}
	if assignee == nil {
		return nil, nil, model.NewUserNotFoundError(task.AssignedTo)
	}

	// 1段階目: スクラム作成
	scrum := &model.Scrum{
		ID:   uuid.New().String(),
		Name: scrumName,
	}
	if err := s.scrumRepo.Create(ctx, scrum); err != nil {
		return nil, nil, fmt.Errorf("スクラムの作成に失敗しました: %w", err)
	}
	if s.collector != nil {
		s.collector.RecordScrumCreated()
	}

	// 2段階目: 初期タスク作成（初期ステータスの履歴エントリをシード）
	newTask := model.NewTask(
		uuid.New().String(),
		title,
		description,
		task.Status,
		scrum.ID,
		task.AssignedTo,
	)
	if err := s.taskRepo.Create(ctx, newTask); err != nil {
		if s.collector != nil {
			s.collector.RecordCompositeFailure()
		}
		slog.Error("scrum created but task creation failed",
			slog.String("scrum_id", scrum.ID),
			slog.String("error", err.Error()),
		)
		return nil, nil, &model.CompositeError{Scrum: scrum, Err: err}
	}
	if s.collector != nil {
		s.collector.RecordTaskCreated()
	}

	slog.Info("scrum created with initial task",
		slog.String("scrum_id", scrum.ID),
		slog.String("task_id", newTask.ID),
	)

	return scrum, newTask, nil
}

// List は全スクラムを作成順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Scrum, error) {
	scrums, err := s.scrumRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("スクラム一覧の取得に失敗しました: %w", err)
	}
	return scrums, nil
}

// GetDetails はスクラムと所属タスク（履歴付き）を返す。
// 所属タスクはその場でストアへ問い合わせる。キャッシュは持たない。
func (s *Service) GetDetails(ctx context.Context, scrumID string) (*Details, error) {
	scrum, err := s.scrumRepo.FindByID(ctx, scrumID)
	if err != nil {
		return nil, fmt.Errorf("スクラムの取得に失敗しました: %w", err)
	}
	if scrum == nil {
		return nil, model.NewScrumNotFoundError(scrumID)
	}

	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{ScrumID: scrumID})
	if err != nil {
		return nil, fmt.Errorf("所属タスクの取得に失敗しました: %w", err)
	}

	return &Details{Scrum: scrum, Tasks: tasks}, nil
}
