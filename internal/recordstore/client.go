// Package recordstore はリモートレコードストアをバックエンドとする
// リポジトリ実装を提供する。
//
// レコードストアはコレクションごとのRESTエンドポイント
// （/users, /scrums, /tasks, /sessions）を公開するJSONドキュメントストアで、
// クエリパラメータによるフィールド完全一致の絞り込みをサポートする。
// PostgreSQL実装と同じrepositoryインターフェースを満たすため、
// サービス層はバックエンドの違いを意識しない。
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/scrumdesk/internal/model"
)

// errNotFound はレコードストアが404を返したことを示す内部センチネル。
// 各リポジトリがドメインのNotFoundエラーまたはnil返却へ変換する。
var errNotFound = errors.New("record not found")

// Client はレコードストアのHTTPクライアント。
// httpClientにはSSRF防止機能付きのクライアントを渡すことを想定している
// （テストではhttptestのクライアントを渡す）。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient はClientの新しいインスタンスを生成する。
// baseURLは末尾スラッシュなしで指定する（例: https://records.example.com）。
func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Ping はレコードストアへの疎通を確認する。ヘルスチェックで使用する。
func (c *Client) Ping() error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/users?_limit=1", nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("レコードストアへの接続に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("record store returned status %d", resp.StatusCode)
	}
	return nil
}

// get は指定コレクションへのGETリクエストを実行し、レスポンスをoutへデコードする。
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	return c.do(req, out)
}

// post は指定コレクションへのPOSTリクエストを実行する。
// outがnilでない場合、作成されたレコードをデコードして返す。
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// patch は指定レコードへの部分更新リクエストを実行する。
func (c *Client) patch(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// delete は指定レコードの削除リクエストを実行する。
// レコードが存在しない場合もエラーにしない（削除は冪等）。
func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	if err := c.do(req, nil); err != nil {
		if errors.Is(err, errNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// do はHTTPリクエストを実行し、レスポンスを処理する。
// 接続障害はSTORE_UNAVAILABLE、404はerrNotFoundへ変換する。
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("record store request failed",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %v", model.NewStoreUnavailableError("レコードストアへの接続に失敗しました"), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("record store returned error status",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("%w: status %d",
			model.NewStoreUnavailableError("レコードストアがエラーを返しました"), resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return nil
}
