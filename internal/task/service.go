// Package task はタスク管理のドメインロジックを提供する。
package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/scrumdesk/internal/access"
	"github.com/hitoshi/scrumdesk/internal/metrics"
	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/repository"
)

// Service はタスク管理のサービス層。
// タスク一覧はキャッシュせず、呼び出しのたびにストアへ問い合わせる。
type Service struct {
	taskRepo  repository.TaskRepository
	collector metrics.MetricsCollector // nilの場合は記録しない
}

// NewService はServiceの新しいインスタンスを生成する。collectorはnilを許容する。
func NewService(taskRepo repository.TaskRepository, collector metrics.MetricsCollector) *Service {
	return &Service{taskRepo: taskRepo, collector: collector}
}

// TasksFor は操作主体が閲覧できるタスク一覧を履歴付きで返す。
// 管理者は全タスク、従業員は自分の担当タスクのみ。
func (s *Service) TasksFor(ctx context.Context, principal *model.User) ([]*model.Task, error) {
	if principal == nil {
		return nil, model.NewForbiddenError()
	}

	filter := repository.TaskFilter{}
	if !access.Project(principal).AllTasks {
		filter.AssignedTo = principal.ID
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return tasks, nil
}

// Get は操作主体が閲覧できるタスクを取得する。
// 担当外のタスクへのアクセスはFORBIDDENになる。
func (s *Service) Get(ctx context.Context, principal *model.User, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}

	if !access.CanViewTask(principal, task) {
		return nil, model.NewForbiddenError()
	}

	return task, nil
}

// UpdateStatus はタスクのステータスを更新し、履歴に1件追記する。
// 同一ステータスへの更新も履歴に記録される（進捗確認の記録として有効）。
func (s *Service) UpdateStatus(ctx context.Context, principal *model.User, taskID string, status model.Status) (*model.Task, error) {
	if !model.ValidStatus(status) {
		return nil, model.NewInvalidStatusError(string(status))
	}

	// 更新対象の閲覧権限を確認する（担当者または管理者のみ）
	if _, err := s.Get(ctx, principal, taskID); err != nil {
		return nil, err
	}

	updated, err := s.taskRepo.UpdateStatus(ctx, taskID, status)
	if err != nil {
		return nil, err
	}

	if s.collector != nil {
		s.collector.RecordHistoryAppended()
	}
	slog.Info("task status updated",
		slog.String("task_id", taskID),
		slog.String("status", string(status)),
	)

	return updated, nil
}
