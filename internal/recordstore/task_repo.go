package recordstore

import (
	"context"
	"errors"
	"net/url"

	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/repository"
)

// TaskRepo はレコードストアをバックエンドとするTaskRepositoryの実装。
//
// レコードストアはドキュメント単位の更新しか提供しないため、履歴は
// タスクドキュメント内の配列として保持する。追記は「現在の履歴＋新規
// エントリ」で配列全体を置き換える部分更新として表現するが、既存
// エントリの内容は常にそのまま引き継ぐため、追記専用の性質は保たれる。
// PostgreSQL実装と異なりUpdateStatusはトランザクションを持たないが、
// ステータスと履歴を同一ドキュメントの1回のPATCHで更新するため、
// 片方だけが反映される状態は発生しない。
type TaskRepo struct {
	client *Client
}

// コンパイル時のインターフェース実装チェック
var _ repository.TaskRepository = (*TaskRepo)(nil)

// NewTaskRepo はTaskRepoの新しいインスタンスを生成する。
func NewTaskRepo(client *Client) *TaskRepo {
	return &TaskRepo{client: client}
}

// Create はタスクをシード済み履歴ごと1つのドキュメントとして作成する。
func (r *TaskRepo) Create(ctx context.Context, task *model.Task) error {
	return r.client.post(ctx, "/tasks", taskToRecord(task), nil)
}

// FindByID は指定IDのタスクを履歴付きで取得する。見つからない場合はnilを返す。
func (r *TaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var rec taskRecord
	if err := r.client.get(ctx, "/tasks/"+url.PathEscape(id), nil, &rec); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec.toModel(), nil
}

// List はフィルタに一致するタスク一覧を履歴付き・ストアの挿入順で返す。
func (r *TaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]*model.Task, error) {
	query := url.Values{}
	if filter.AssignedTo != "" {
		query.Set("assignedTo", filter.AssignedTo)
	}
	if filter.ScrumID != "" {
		query.Set("scrumId", filter.ScrumID)
	}

	var recs []taskRecord
	if err := r.client.get(ctx, "/tasks", query, &recs); err != nil {
		return nil, err
	}

	tasks := make([]*model.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, rec.toModel())
	}
	return tasks, nil
}

// AppendHistory は現在日付の履歴エントリを1件追記する。
// taskIDが未知の場合はTASK_NOT_FOUNDのエラーを返す。
func (r *TaskRepo) AppendHistory(ctx context.Context, taskID string, status model.Status) error {
	current, err := r.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if current == nil {
		return model.NewTaskNotFoundError(taskID)
	}

	history := appendEntry(current.History, status)
	patch := map[string]any{"history": history}
	return r.client.patch(ctx, "/tasks/"+url.PathEscape(taskID), patch, nil)
}

// UpdateStatus はタスクのステータス更新と履歴追記を1回のPATCHで実行し、
// 更新後のタスクを返す。taskIDが未知の場合はTASK_NOT_FOUNDのエラーを返す。
func (r *TaskRepo) UpdateStatus(ctx context.Context, taskID string, status model.Status) (*model.Task, error) {
	current, err := r.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}

	history := appendEntry(current.History, status)
	patch := map[string]any{
		"status":  string(status),
		"history": history,
	}

	var updated taskRecord
	if err := r.client.patch(ctx, "/tasks/"+url.PathEscape(taskID), patch, &updated); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, model.NewTaskNotFoundError(taskID)
		}
		return nil, err
	}
	return updated.toModel(), nil
}

// appendEntry は既存履歴を変更せず、末尾に現在日付のエントリを加えた
// ワイヤ表現の履歴を返す。
func appendEntry(history []model.HistoryEntry, status model.Status) []historyRecord {
	records := make([]historyRecord, 0, len(history)+1)
	for _, h := range history {
		records = append(records, historyRecord{Status: string(h.Status), Date: h.Date})
	}
	return append(records, historyRecord{Status: string(status), Date: model.Today()})
}
