// Package auth はログイン認証とセッション管理を提供する。
package auth

import (
	"context"
	"fmt"

	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/repository"
)

// CredentialVerifier は資格情報の照合方法を抽象化する。
// パスワードは不透明な資格情報として保存されており、照合アルゴリズムの
// 変更（ハッシュ化等の導入）はこのインターフェースの実装差し替えで行う。
type CredentialVerifier interface {
	// Verify は資格情報を照合し、一致したユーザーを返す。
	// 不一致の場合は(nil, nil)を返す。エラーはストア障害のみ。
	Verify(ctx context.Context, email, password string) (*model.User, error)
}

// PlaintextVerifier はストア側での完全一致照合を行うCredentialVerifierの実装。
// メールとパスワードの両方を検索条件としてストアに渡し、
// 複数一致の場合は最初の一致を採用する。
type PlaintextVerifier struct {
	userRepo repository.UserRepository
}

// コンパイル時のインターフェース実装チェック
var _ CredentialVerifier = (*PlaintextVerifier)(nil)

// NewPlaintextVerifier はPlaintextVerifierの新しいインスタンスを生成する。
func NewPlaintextVerifier(userRepo repository.UserRepository) *PlaintextVerifier {
	return &PlaintextVerifier{userRepo: userRepo}
}

// Verify は資格情報を照合する。
func (v *PlaintextVerifier) Verify(ctx context.Context, email, password string) (*model.User, error) {
	user, err := v.userRepo.FindByEmailAndPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("資格情報の照合に失敗しました: %w", err)
	}
	return user, nil
}
