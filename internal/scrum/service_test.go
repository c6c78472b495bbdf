package scrum

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/repository"
	"github.com/hitoshi/scrumdesk/internal/security"
)

// --- モック ---

type mockScrumRepo struct {
	createFn   func(ctx context.Context, scrum *model.Scrum) error
	findByIDFn func(ctx context.Context, id string) (*model.Scrum, error)
	listFn     func(ctx context.Context) ([]*model.Scrum, error)
}

func (m *mockScrumRepo) Create(ctx context.Context, scrum *model.Scrum) error {
	if m.createFn != nil {
		return m.createFn(ctx, scrum)
	}
	return nil
}
func (m *mockScrumRepo) FindByID(ctx context.Context, id string) (*model.Scrum, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockScrumRepo) List(ctx context.Context) ([]*model.Scrum, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockTaskRepo struct {
	createFn func(ctx context.Context, task *model.Task) error
	listFn   func(ctx context.Context, filter repository.TaskFilter) ([]*model.Task, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, task *model.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}
func (m *mockTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	return nil, nil
}
func (m *mockTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}
func (m *mockTaskRepo) AppendHistory(ctx context.Context, taskID string, status model.Status) error {
	return nil
}
func (m *mockTaskRepo) UpdateStatus(ctx context.Context, taskID string, status model.Status) (*model.Task, error) {
	return nil, nil
}

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.User{ID: id, Role: model.RoleEmployee}, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) FindByEmailAndPassword(ctx context.Context, email, password string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]*model.User, error) {
	return nil, nil
}

func newTestService(scrumRepo *mockScrumRepo, taskRepo *mockTaskRepo, userRepo *mockUserRepo) *Service {
	return NewService(scrumRepo, taskRepo, userRepo, security.NewInputSanitizer(), nil)
}

func validInput() TaskInput {
	return TaskInput{
		Title:       "設計レビュー",
		Description: "API設計のレビューを行う",
		Status:      model.StatusToDo,
		AssignedTo:  "u1",
	}
}

// --- テスト ---

// TestCreateScrumWithTask_Success は両段階成功でスクラムとタスクが返ることを検証する。
func TestCreateScrumWithTask_Success(t *testing.T) {
	var createdScrum *model.Scrum
	var createdTask *model.Task

	scrumRepo := &mockScrumRepo{
		createFn: func(ctx context.Context, scrum *model.Scrum) error {
			createdScrum = scrum
			return nil
		},
	}
	taskRepo := &mockTaskRepo{
		createFn: func(ctx context.Context, task *model.Task) error {
			createdTask = task
			return nil
		},
	}

	svc := newTestService(scrumRepo, taskRepo, &mockUserRepo{})

	scrum, task, err := svc.CreateScrumWithTask(context.Background(), "第1スプリント", validInput())
	if err != nil {
		t.Fatalf("CreateScrumWithTask returned error: %v", err)
	}
	if scrum == nil || scrum.ID == "" {
		t.Fatal("expected scrum with generated ID")
	}
	if task == nil || task.ScrumID != scrum.ID {
		t.Fatalf("task should reference the new scrum: %+v", task)
	}
	if createdScrum == nil || createdTask == nil {
		t.Fatal("both scrum and task should be persisted")
	}
	// タスクは初期ステータスの履歴エントリを1件シードして作成される
	if len(task.History) != 1 {
		t.Fatalf("expected 1 seeded history entry, got %d", len(task.History))
	}
	if task.History[0].Status != model.StatusToDo || task.History[0].Date != model.Today() {
		t.Errorf("unexpected seeded entry: %+v", task.History[0])
	}
}

// TestCreateScrumWithTask_ValidationBeforeWrite は検証失敗が
// どちらの書き込みよりも前に解決されることを検証する。
func TestCreateScrumWithTask_ValidationBeforeWrite(t *testing.T) {
	tests := []struct {
		name      string
		scrumName string
		task      TaskInput
		wantCode  string
	}{
		{
			name:      "スクラム名が空",
			scrumName: "",
			task:      validInput(),
			wantCode:  model.ErrCodeValidationFailed,
		},
		{
			name:      "タイトルが空",
			scrumName: "第1スプリント",
			task:      TaskInput{Title: "", Description: "API設計のレビューを行う", Status: model.StatusToDo, AssignedTo: "u1"},
			wantCode:  model.ErrCodeValidationFailed,
		},
		{
			name:      "説明が空",
			scrumName: "第1スプリント",
			task:      TaskInput{Title: "設計レビュー", Description: "", Status: model.StatusToDo, AssignedTo: "u1"},
			wantCode:  model.ErrCodeValidationFailed,
		},
		{
			name:      "説明が空白タグのみ",
			scrumName: "第1スプリント",
			task:      TaskInput{Title: "設計レビュー", Description: "<p>  </p>", Status: model.StatusToDo, AssignedTo: "u1"},
			wantCode:  model.ErrCodeValidationFailed,
		},
		{
			name:      "未定義ステータス",
			scrumName: "第1スプリント",
			task:      TaskInput{Title: "設計レビュー", Description: "API設計のレビューを行う", Status: "Blocked", AssignedTo: "u1"},
			wantCode:  model.ErrCodeInvalidStatus,
		},
		{
			name:      "担当者が空",
			scrumName: "第1スプリント",
			task:      TaskInput{Title: "設計レビュー", Description: "API設計のレビューを行う", Status: model.StatusToDo, AssignedTo: ""},
			wantCode:  model.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scrumWritten := false
			taskWritten := false
			scrumRepo := &mockScrumRepo{
				createFn: func(ctx context.Context, scrum *model.Scrum) error {
					scrumWritten = true
					return nil
				},
			}
			taskRepo := &mockTaskRepo{
				createFn: func(ctx context.Context, task *model.Task) error {
					taskWritten = true
					return nil
				},
			}

			svc := newTestService(scrumRepo, taskRepo, &mockUserRepo{})

			_, _, err := svc.CreateScrumWithTask(context.Background(), tt.scrumName, tt.task)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T: %v", err, err)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, apiErr.Code)
			}
			if scrumWritten || taskWritten {
				t.Error("validation failures must not produce partial writes")
			}
		})
	}
}

// TestCreateScrumWithTask_UnknownAssignee は未知の担当者指定が
// スクラム作成前に拒否されることを検証する。
func TestCreateScrumWithTask_UnknownAssignee(t *testing.T) {
	scrumWritten := false
	scrumRepo := &mockScrumRepo{
		createFn: func(ctx context.Context, scrum *model.Scrum) error {
			scrumWritten = true
			return nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}

	svc := newTestService(scrumRepo, &mockTaskRepo{}, userRepo)

	_, _, err := svc.CreateScrumWithTask(context.Background(), "第1スプリント", validInput())
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected code %s, got %s", model.ErrCodeUserNotFound, apiErr.Code)
	}
	if scrumWritten {
		t.Error("scrum must not be created for an unknown assignee")
	}
}

// TestCreateScrumWithTask_PartialFailure はスクラム作成成功後のタスク作成失敗が
// 作成済みスクラムを保持したCompositeErrorで報告されることを検証する。
func TestCreateScrumWithTask_PartialFailure(t *testing.T) {
	scrumRepo := &mockScrumRepo{}
	taskRepo := &mockTaskRepo{
		createFn: func(ctx context.Context, task *model.Task) error {
			return model.NewStoreUnavailableError("書き込みに失敗しました")
		},
	}

	svc := newTestService(scrumRepo, taskRepo, &mockUserRepo{})

	_, _, err := svc.CreateScrumWithTask(context.Background(), "第1スプリント", validInput())
	if err == nil {
		t.Fatal("expected composite error")
	}

	var composite *model.CompositeError
	if !errors.As(err, &composite) {
		t.Fatalf("expected CompositeError, got %T: %v", err, err)
	}
	// 作成済みスクラムは隠蔽されない（補償に必要）
	if composite.Scrum == nil || composite.Scrum.ID == "" {
		t.Error("composite error must carry the created scrum")
	}
	// 失敗原因も保持される
	var apiErr *model.APIError
	if !errors.As(composite.Err, &apiErr) || apiErr.Code != model.ErrCodeStoreUnavailable {
		t.Errorf("composite error must carry the task failure cause: %v", composite.Err)
	}
}

// TestCreateScrumWithTask_ScrumFailure は1段階目の失敗が通常のエラーとして
// 報告されることを検証する（部分状態は発生していない）。
func TestCreateScrumWithTask_ScrumFailure(t *testing.T) {
	scrumRepo := &mockScrumRepo{
		createFn: func(ctx context.Context, scrum *model.Scrum) error {
			return model.NewStoreUnavailableError("書き込みに失敗しました")
		},
	}
	taskRepo := &mockTaskRepo{
		createFn: func(ctx context.Context, task *model.Task) error {
			t.Error("task must not be created when scrum creation fails")
			return nil
		},
	}

	svc := newTestService(scrumRepo, taskRepo, &mockUserRepo{})

	_, _, err := svc.CreateScrumWithTask(context.Background(), "第1スプリント", validInput())
	if err == nil {
		t.Fatal("expected error")
	}
	var composite *model.CompositeError
	if errors.As(err, &composite) {
		t.Error("first-step failure must not be reported as a composite error")
	}
}

// TestGetDetails_ReturnsScrumAndTasks はスクラム詳細に所属タスクが含まれることを検証する。
func TestGetDetails_ReturnsScrumAndTasks(t *testing.T) {
	scrumRepo := &mockScrumRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Scrum, error) {
			return &model.Scrum{ID: id, Name: "第1スプリント"}, nil
		},
	}
	taskRepo := &mockTaskRepo{
		listFn: func(ctx context.Context, filter repository.TaskFilter) ([]*model.Task, error) {
			if filter.ScrumID != "s1" {
				t.Errorf("expected scrum filter s1, got %q", filter.ScrumID)
			}
			return []*model.Task{{ID: "t1", ScrumID: "s1"}}, nil
		},
	}

	svc := newTestService(scrumRepo, taskRepo, &mockUserRepo{})

	details, err := svc.GetDetails(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetDetails returned error: %v", err)
	}
	if details.Scrum.ID != "s1" || len(details.Tasks) != 1 {
		t.Errorf("unexpected details: %+v", details)
	}
}

// TestGetDetails_UnknownScrum は未知スクラムがSCRUM_NOT_FOUNDになることを検証する。
func TestGetDetails_UnknownScrum(t *testing.T) {
	svc := newTestService(&mockScrumRepo{}, &mockTaskRepo{}, &mockUserRepo{})

	_, err := svc.GetDetails(context.Background(), "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeScrumNotFound {
		t.Errorf("expected code %s, got %s", model.ErrCodeScrumNotFound, apiErr.Code)
	}
}
