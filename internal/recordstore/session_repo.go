package recordstore

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/repository"
)

// SessionRepo はレコードストアをバックエンドとするSessionRepositoryの実装。
type SessionRepo struct {
	client *Client
}

// コンパイル時のインターフェース実装チェック
var _ repository.SessionRepository = (*SessionRepo)(nil)

// NewSessionRepo はSessionRepoの新しいインスタンスを生成する。
func NewSessionRepo(client *Client) *SessionRepo {
	return &SessionRepo{client: client}
}

// Create はセッションレコードを作成する。
func (r *SessionRepo) Create(ctx context.Context, session *model.Session) error {
	rec := sessionRecord{
		ID:        session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	}
	return r.client.post(ctx, "/sessions", rec, nil)
}

// FindByID は指定IDのセッションを取得する。
// 見つからない場合と期限切れの場合はnilを返す。
// ストアは期限を解釈しないため、期限判定はクライアント側で行う。
func (r *SessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var rec sessionRecord
	if err := r.client.get(ctx, "/sessions/"+url.PathEscape(id), nil, &rec); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !rec.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	return rec.toModel(), nil
}

// DeleteByID は指定IDのセッションを削除する。存在しない場合もエラーにしない。
func (r *SessionRepo) DeleteByID(ctx context.Context, id string) error {
	return r.client.delete(ctx, "/sessions/"+url.PathEscape(id))
}
