package recordstore

import (
	"context"
	"errors"
	"net/url"

	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/repository"
)

// UserRepo はレコードストアをバックエンドとするUserRepositoryの実装。
type UserRepo struct {
	client *Client
}

// コンパイル時のインターフェース実装チェック
var _ repository.UserRepository = (*UserRepo)(nil)

// NewUserRepo はUserRepoの新しいインスタンスを生成する。
func NewUserRepo(client *Client) *UserRepo {
	return &UserRepo{client: client}
}

// Create はユーザーレコードを作成する。
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	return r.client.post(ctx, "/users", userToRecord(user), nil)
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var rec userRecord
	if err := r.client.get(ctx, "/users/"+url.PathEscape(id), nil, &rec); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec.toModel(), nil
}

// FindByEmail はメールアドレスでユーザーを検索する。
// ストアはクエリ一致の全件を返すため、最初の一致を採用する。
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := url.Values{}
	query.Set("email", email)

	var recs []userRecord
	if err := r.client.get(ctx, "/users", query, &recs); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0].toModel(), nil
}

// FindByEmailAndPassword はログイン照合用の検索を行う。
// メールとパスワードの両方をクエリ条件としてストア側で照合し、
// 一致が複数ある場合は最初の一致を返す。
func (r *UserRepo) FindByEmailAndPassword(ctx context.Context, email, password string) (*model.User, error) {
	query := url.Values{}
	query.Set("email", email)
	query.Set("password", password)

	var recs []userRecord
	if err := r.client.get(ctx, "/users", query, &recs); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0].toModel(), nil
}

// List はフィルタに一致するユーザー一覧をストアの挿入順で返す。
func (r *UserRepo) List(ctx context.Context, filter repository.UserFilter) ([]*model.User, error) {
	query := url.Values{}
	if filter.Email != "" {
		query.Set("email", filter.Email)
	}

	var recs []userRecord
	if err := r.client.get(ctx, "/users", query, &recs); err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, rec.toModel())
	}
	return users, nil
}
