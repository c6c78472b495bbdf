// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, domain, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeInvalidRole      = "INVALID_ROLE"
	ErrCodeEmailTaken       = "EMAIL_TAKEN"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeScrumNotFound    = "SCRUM_NOT_FOUND"
	ErrCodeTaskNotFound     = "TASK_NOT_FOUND"
	ErrCodeAuthFailed       = "AUTH_FAILED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodePartialCreate    = "PARTIAL_CREATE"
)

// NewValidationError は必須フィールドの欠落・不正エラーを生成する。
// ストア呼び出しの前に必ずローカルで解決される（部分状態を作らない）。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidStatusError は未定義のタスクステータスエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "ステータスには To Do、In Progress、Done のいずれかを指定してください。",
	}
}

// NewInvalidRoleError は未定義の権限区分エラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("無効なロールです: %s", role),
		Category: "validation",
		Action:   "ロールには admin または employee を指定してください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  fmt.Sprintf("このメールアドレスは既に使用されています: %s", email),
		Category: "validation",
		Action:   "別のメールアドレスを指定するか、ログインしてください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "domain",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewScrumNotFoundError はスクラム未検出エラーを生成する。
func NewScrumNotFoundError(scrumID string) *APIError {
	return &APIError{
		Code:     ErrCodeScrumNotFound,
		Message:  fmt.Sprintf("指定されたスクラムが見つかりません: %s", scrumID),
		Category: "domain",
		Action:   "スクラムIDを確認してください。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "domain",
		Action:   "タスクIDを確認してください。",
	}
}

// NewAuthFailedError は認証失敗エラーを生成する。
// どの要素（メール/パスワード）が誤っていたかは意図的に区別しない。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を実行する権限がありません。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewStoreUnavailableError はストア到達不能エラーを生成する。
// 失敗したストア呼び出しは必ず報告され、空の結果に既定されることはない。
func NewStoreUnavailableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  fmt.Sprintf("ストアに接続できません: %s", reason),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// CompositeError は複数ステップ操作の部分コミットを通知するエラー。
// スクラム作成は成功しタスク作成が失敗した場合に返され、
// 補償（将来的な削除操作）に必要な作成済みスクラムを保持する。
// 孤児スクラムを隠蔽してはならない。後始末は呼び出し側の責務。
type CompositeError struct {
	Scrum *Scrum // 作成に成功したスクラム
	Err   error  // タスク作成の失敗原因
}

// Error はerrorインターフェースを実装する。
func (e *CompositeError) Error() string {
	return fmt.Sprintf("[%s] scrum %q (id=%s) was created but its task was not: %v",
		ErrCodePartialCreate, e.Scrum.Name, e.Scrum.ID, e.Err)
}

// Unwrap はタスク作成の失敗原因を返す。
func (e *CompositeError) Unwrap() error {
	return e.Err
}
