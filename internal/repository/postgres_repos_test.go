package repository

import (
	"testing"

	"github.com/hitoshi/scrumdesk/internal/model"
)

// 各PostgresリポジトリがDBなしで初期化できることを検証
func TestPostgresRepos_Initialize(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Error("expected non-nil user repo")
	}
	if NewPostgresScrumRepo(nil) == nil {
		t.Error("expected non-nil scrum repo")
	}
	if NewPostgresTaskRepo(nil) == nil {
		t.Error("expected non-nil task repo")
	}
	if NewPostgresSessionRepo(nil) == nil {
		t.Error("expected non-nil session repo")
	}
}

// Createに渡すタスクがシード済み履歴を持つことの期待動作
// （model.NewTask経由でのみタスクが生成される契約の確認）
func TestPostgresTaskRepo_Create_ExpectsSeededHistory(t *testing.T) {
	task := model.NewTask("task-1", "Setup", "init", model.StatusToDo, "scrum-1", "user-1")

	if len(task.History) != 1 {
		t.Fatalf("seeded history length = %d, want 1", len(task.History))
	}
	if task.History[0].Status != task.Status {
		t.Errorf("seed status = %q, want %q", task.History[0].Status, task.Status)
	}
}

// UpdateStatusが未知のtaskIDに対してTASK_NOT_FOUNDを返す契約の確認
// （インターフェース契約。実際のDB検証は結合テスト環境で行う）
func TestTaskRepository_NotFoundContract(t *testing.T) {
	err := model.NewTaskNotFoundError("missing-task")
	if err.Code != model.ErrCodeTaskNotFound {
		t.Errorf("code = %q, want %q", err.Code, model.ErrCodeTaskNotFound)
	}
}
