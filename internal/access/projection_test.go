package access

import (
	"testing"

	"github.com/hitoshi/scrumdesk/internal/model"
)

// Projectがロールごとの可視範囲を導出することを検証
func TestProject_ByRole(t *testing.T) {
	tests := []struct {
		name      string
		principal *model.User
		want      View
	}{
		{
			name:      "管理者は全権限",
			principal: &model.User{ID: "a1", Role: model.RoleAdmin},
			want:      View{AllScrums: true, AllTasks: true, ManageUsers: true, CreateScrums: true},
		},
		{
			name:      "従業員は担当タスクスコープのみで管理系権限を持たない",
			principal: &model.User{ID: "e1", Role: model.RoleEmployee},
			want:      View{},
		},
		{
			name:      "未知のロールには何も許可しない",
			principal: &model.User{ID: "x1", Role: "superuser"},
			want:      View{},
		},
		{
			name:      "nilには何も許可しない",
			principal: nil,
			want:      View{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Project(tt.principal); got != tt.want {
				t.Errorf("Project() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// 同一ロールのユーザーには同一のViewが導出されることを検証
func TestProject_SameRoleSameView(t *testing.T) {
	a := Project(&model.User{ID: "e1", Role: model.RoleEmployee})
	b := Project(&model.User{ID: "e2", Role: model.RoleEmployee})
	if a != b {
		t.Errorf("employees should share the same view: %+v vs %+v", a, b)
	}
}

// CanViewTaskが担当者スコープを強制することを検証
func TestCanViewTask(t *testing.T) {
	admin := &model.User{ID: "a1", Role: model.RoleAdmin}
	employee := &model.User{ID: "e1", Role: model.RoleEmployee}
	other := &model.User{ID: "e2", Role: model.RoleEmployee}
	task := &model.Task{ID: "t1", AssignedTo: "e1"}

	if !CanViewTask(admin, task) {
		t.Error("admin should view any task")
	}
	if !CanViewTask(employee, task) {
		t.Error("assignee should view own task")
	}
	if CanViewTask(other, task) {
		t.Error("other employee should not view the task")
	}
}

// FilterManageableが管理者（自分自身を含む）を除外することを検証
func TestFilterManageable_ExcludesAdmins(t *testing.T) {
	users := []*model.User{
		{ID: "a1", Role: model.RoleAdmin},
		{ID: "e1", Role: model.RoleEmployee},
		{ID: "a2", Role: model.RoleAdmin},
		{ID: "e2", Role: model.RoleEmployee},
	}

	got := FilterManageable(users)
	if len(got) != 2 {
		t.Fatalf("expected 2 manageable users, got %d", len(got))
	}
	for _, u := range got {
		if u.Role == model.RoleAdmin {
			t.Errorf("admin %s should be excluded", u.ID)
		}
	}
	// 挿入順は保たれる
	if got[0].ID != "e1" || got[1].ID != "e2" {
		t.Errorf("order not preserved: %s, %s", got[0].ID, got[1].ID)
	}
}

// FilterManageableが空入力で空を返すことを検証
func TestFilterManageable_Empty(t *testing.T) {
	if got := FilterManageable(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
