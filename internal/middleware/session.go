// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/scrumdesk/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに操作主体を格納するためのキー。
var principalContextKey = contextKey("principal")

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// UserFinder はユーザーの検索に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// 有効性を検証するミドルウェアを返す。
// 認証済みユーザー（操作主体）をリクエストコンテキストに注入する。
// ロールはストア上のユーザーレコードから毎回解決し、
// クライアントの申告は一切信用しない。
// 未認証リクエストには401 Unauthorizedを返す。
// セッション・ユーザーの解決中にストア自体が失敗した場合は認証失敗とは
// 区別し、502 STORE_UNAVAILABLEをそのまま表面化させる。
func NewSessionMiddleware(sessionFinder SessionFinder, userFinder UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. CookieからセッションIDを取得
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
				return
			}

			// 2. セッションの有効性を検証
			session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				writeStoreFailureResponse(w, err)
				return
			}
			if session == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
				return
			}

			// 3. 操作主体をストアから解決
			principal, err := userFinder.FindByID(r.Context(), session.UserID)
			if err != nil {
				slog.Error("failed to find principal",
					slog.String("error", err.Error()),
					slog.String("user_id", session.UserID),
				)
				writeStoreFailureResponse(w, err)
				return
			}
			if principal == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
				return
			}

			// 4. 操作主体をコンテキストに注入
			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeStoreFailureResponse はセッション解決中のストア障害を502で返す。
// 障害を認証失敗（401）へ変換すると、有効なセッションを持つクライアントが
// 一時的なストア障害で再ログインを強いられるため、原因コードを保持する。
func writeStoreFailureResponse(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeStoreUnavailable {
		WriteErrorResponse(w, http.StatusBadGateway, apiErr)
		return
	}
	WriteErrorResponse(w, http.StatusBadGateway,
		model.NewStoreUnavailableError("セッションの確認に失敗しました"))
}

// PrincipalFromContext はリクエストコンテキストから操作主体を取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (*model.User, error) {
	principal, ok := ctx.Value(principalContextKey).(*model.User)
	if !ok || principal == nil {
		return nil, fmt.Errorf("principal not found in context")
	}
	return principal, nil
}

// ContextWithPrincipal はコンテキストに操作主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal *model.User) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}
