// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/scrumdesk/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
// ScrumIDは部分コミット時に作成済みスクラムのIDを通知するためのフィールド。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
	ScrumID  string `json:"scrumId,omitempty"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeCompositeErrorResponse は部分コミット（スクラム作成成功・タスク作成失敗）の
// エラーレスポンスを書き込む。作成済みスクラムのIDをレスポンスに含め、
// 成功を装わず、作成済みリソースも隠蔽しない。
func writeCompositeErrorResponse(w http.ResponseWriter, composite *model.CompositeError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     model.ErrCodePartialCreate,
		Message:  "スクラムは作成されましたが、タスクの作成に失敗しました。",
		Category: "system",
		Action:   "作成済みのスクラムを確認し、タスクを個別に作成し直してください。",
		ScrumID:  composite.Scrum.ID,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var composite *model.CompositeError
	if errors.As(err, &composite) {
		slog.Error("partial create reported to client",
			slog.String("scrum_id", composite.Scrum.ID),
			slog.String("error", composite.Err.Error()),
		)
		writeCompositeErrorResponse(w, composite)
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidStatus, model.ErrCodeInvalidRole:
		return http.StatusBadRequest
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeUserNotFound, model.ErrCodeScrumNotFound, model.ErrCodeTaskNotFound:
		return http.StatusNotFound
	case model.ErrCodeAuthFailed:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeStoreUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeInvalidRequestBody はJSONデコード失敗時の統一レスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}
