// Package repository はデータ永続化のインターフェースを定義する。
//
// バッキングストア（PostgreSQL、リモートレコードストア）に対して
// 多態的に動作する契約であり、読み取りは冪等、作成は呼び出しごとに
// 新しいIDを生成する（冪等ではない）。
package repository

import (
	"context"

	"github.com/hitoshi/scrumdesk/internal/model"
)

// UserFilter はユーザー一覧の絞り込み条件。ゼロ値は全件を意味する。
type UserFilter struct {
	// Email はメールアドレス完全一致で絞り込む。
	Email string
}

// TaskFilter はタスク一覧の絞り込み条件。ゼロ値は全件を意味する。
type TaskFilter struct {
	// AssignedTo は担当ユーザーIDで絞り込む。
	AssignedTo string
	// ScrumID は所属スクラムIDで絞り込む。
	ScrumID string
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。IDは呼び出し側が採番して渡す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	// 重複メールが許可された構成では最初の一致を返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByEmailAndPassword はログイン照合用の検索を行う。
	// 一致が0件の場合はnilを返し、複数一致の場合は最初の一致を返す。
	FindByEmailAndPassword(ctx context.Context, email, password string) (*model.User, error)

	// List はフィルタに一致するユーザー一覧をストアの自然順で返す。
	List(ctx context.Context, filter UserFilter) ([]*model.User, error)
}

// ScrumRepository はスクラムデータの永続化インターフェース。
type ScrumRepository interface {
	// Create はスクラムを作成する。
	Create(ctx context.Context, scrum *model.Scrum) error

	// FindByID は指定IDのスクラムを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Scrum, error)

	// List は全スクラムをストアの自然順（通常は作成順）で返す。
	List(ctx context.Context) ([]*model.Scrum, error)
}

// TaskRepository はタスクデータと監査履歴台帳の永続化インターフェース。
//
// 履歴は追記専用: 書き込み経路はCreate（シード）とAppendHistory／
// UpdateStatus（追記）のみで、既存エントリを書き換える・削除する操作は
// 存在しない。
type TaskRepository interface {
	// Create はタスクとシード済み履歴を1つの単位として永続化する。
	// task.Historyにはmodel.NewTaskがシードした初期エントリが含まれている。
	Create(ctx context.Context, task *model.Task) error

	// FindByID は指定IDのタスクを履歴付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// List はフィルタに一致するタスク一覧を履歴付き・ストアの自然順で返す。
	List(ctx context.Context, filter TaskFilter) ([]*model.Task, error)

	// AppendHistory は現在日付の履歴エントリを1件追記する。
	// taskIDが未知の場合はmodel.ErrCodeTaskNotFoundのエラーを返す。
	AppendHistory(ctx context.Context, taskID string, status model.Status) error

	// UpdateStatus はタスクのステータス更新と履歴追記を1つの論理単位として
	// 実行し、更新後のタスクを返す。トランザクションを持つバックエンドでは
	// 両方が成功するかどちらも反映されない。taskIDが未知の場合は
	// model.ErrCodeTaskNotFoundのエラーを返す。
	UpdateStatus(ctx context.Context, taskID string, status model.Status) (*model.Task, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}
