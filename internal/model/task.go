package model

import "time"

// Status はタスクの進行状態を表す。
type Status string

const (
	// StatusToDo は未着手。
	StatusToDo Status = "To Do"
	// StatusInProgress は作業中。
	StatusInProgress Status = "In Progress"
	// StatusDone は完了。
	StatusDone Status = "Done"
)

// ValidStatus はstatusが定義済みの3値のいずれかを検証する。
func ValidStatus(s Status) bool {
	return s == StatusToDo || s == StatusInProgress || s == StatusDone
}

// HistoryEntry はステータス値とそれが記録された日付の不変レコードを表す。
// Dateは時刻成分を持たないISO形式のカレンダー日付（"2006-01-02"）。
type HistoryEntry struct {
	Status Status
	Date   string
}

// Task はステータス・担当者・監査履歴を持つ作業単位を表す。
// ScrumIDは作成後に変更不可。Historyは挿入順＝時系列の追記専用シーケンスで、
// 作成直後から空になることはなく、末尾エントリのステータスは常にStatusと一致する。
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	ScrumID     string
	AssignedTo  string
	History     []HistoryEntry
}

// NewTask は初期ステータスの履歴エントリを1件シードした新しいTaskを生成する。
// タスクはこのコンストラクタ経由でのみ生成され、履歴が空のタスクは存在しない。
func NewTask(id, title, description string, status Status, scrumID, assignedTo string) *Task {
	return &Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      status,
		ScrumID:     scrumID,
		AssignedTo:  assignedTo,
		History: []HistoryEntry{
			{Status: status, Date: Today()},
		},
	}
}

// Today は現在のカレンダー日付をISO形式（時刻成分なし）で返す。
func Today() string {
	return time.Now().Format("2006-01-02")
}
