package recordstore

import (
	"context"
	"errors"
	"net/url"

	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/repository"
)

// ScrumRepo はレコードストアをバックエンドとするScrumRepositoryの実装。
type ScrumRepo struct {
	client *Client
}

// コンパイル時のインターフェース実装チェック
var _ repository.ScrumRepository = (*ScrumRepo)(nil)

// NewScrumRepo はScrumRepoの新しいインスタンスを生成する。
func NewScrumRepo(client *Client) *ScrumRepo {
	return &ScrumRepo{client: client}
}

// Create はスクラムレコードを作成する。
func (r *ScrumRepo) Create(ctx context.Context, scrum *model.Scrum) error {
	return r.client.post(ctx, "/scrums", scrumRecord{ID: scrum.ID, Name: scrum.Name}, nil)
}

// FindByID は指定IDのスクラムを取得する。見つからない場合はnilを返す。
func (r *ScrumRepo) FindByID(ctx context.Context, id string) (*model.Scrum, error) {
	var rec scrumRecord
	if err := r.client.get(ctx, "/scrums/"+url.PathEscape(id), nil, &rec); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec.toModel(), nil
}

// List は全スクラムをストアの挿入順で返す。
func (r *ScrumRepo) List(ctx context.Context) ([]*model.Scrum, error) {
	var recs []scrumRecord
	if err := r.client.get(ctx, "/scrums", nil, &recs); err != nil {
		return nil, err
	}

	scrums := make([]*model.Scrum, 0, len(recs))
	for _, rec := range recs {
		scrums = append(scrums, rec.toModel())
	}
	return scrums, nil
}
