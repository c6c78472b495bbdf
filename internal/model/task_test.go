package model

import (
	"testing"
	"time"
)

// NewTaskが初期ステータスの履歴を1件シードすることを検証
func TestNewTask_SeedsHistory(t *testing.T) {
	task := NewTask("task-1", "Setup", "init", StatusToDo, "scrum-1", "user-1")

	if len(task.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(task.History))
	}
	if task.History[0].Status != StatusToDo {
		t.Errorf("history[0].Status = %q, want %q", task.History[0].Status, StatusToDo)
	}
	if task.History[0].Date != Today() {
		t.Errorf("history[0].Date = %q, want %q", task.History[0].Date, Today())
	}
	if task.Status != StatusToDo {
		t.Errorf("task.Status = %q, want %q", task.Status, StatusToDo)
	}
}

// 履歴末尾のステータスが現在のステータスと一致することを検証
func TestNewTask_LastHistoryMatchesStatus(t *testing.T) {
	for _, status := range []Status{StatusToDo, StatusInProgress, StatusDone} {
		task := NewTask("t", "title", "desc", status, "s", "u")
		last := task.History[len(task.History)-1]
		if last.Status != task.Status {
			t.Errorf("status %q: last history entry = %q, want %q", status, last.Status, task.Status)
		}
	}
}

// ValidStatusが定義済みの3値のみを受け付けることを検証
func TestValidStatus(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusToDo, true},
		{StatusInProgress, true},
		{StatusDone, true},
		{Status(""), false},
		{Status("todo"), false},
		{Status("Cancelled"), false},
	}

	for _, tt := range tests {
		if got := ValidStatus(tt.status); got != tt.want {
			t.Errorf("ValidStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

// ValidRoleがadminとemployeeのみを受け付けることを検証
func TestValidRole(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleEmployee, true},
		{Role(""), false},
		{Role("manager"), false},
	}

	for _, tt := range tests {
		if got := ValidRole(tt.role); got != tt.want {
			t.Errorf("ValidRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

// Todayが時刻成分を持たないISO日付を返すことを検証
func TestToday_ISODateFormat(t *testing.T) {
	got := Today()
	parsed, err := time.Parse("2006-01-02", got)
	if err != nil {
		t.Fatalf("Today() = %q is not an ISO date: %v", got, err)
	}
	if parsed.Format("2006-01-02") != got {
		t.Errorf("round-trip mismatch: %q", got)
	}
}
