// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限区分を表す。
type Role string

const (
	// RoleAdmin は管理者。スクラム・タスク・ユーザーの作成と全体の閲覧が可能。
	RoleAdmin Role = "admin"
	// RoleEmployee は従業員。自分に割り当てられたタスクのみ閲覧できる。
	RoleEmployee Role = "employee"
)

// ValidRole はroleが定義済みの権限区分かを検証する。
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User はサービス利用ユーザーを表す。
// Emailはログインキーとして使用される。
// Passwordは与えられたままの不透明な資格情報として保存する。
// 照合方法はauth.CredentialVerifierが抽象化する。
type User struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     Role
}

// Session はユーザーのログインセッションを表す。
// ログイン時に発行され、ログアウト時に破棄される明示的なライフサイクルを持つ。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
