package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/scrumdesk/internal/access"
	"github.com/hitoshi/scrumdesk/internal/middleware"
	"github.com/hitoshi/scrumdesk/internal/model"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	TasksFor(ctx context.Context, principal *model.User) ([]*model.Task, error)
	Get(ctx context.Context, principal *model.User, taskID string) (*model.Task, error)
	UpdateStatus(ctx context.Context, principal *model.User, taskID string, status model.Status) (*model.Task, error)
}

// TaskHandler はタスク閲覧・ステータス更新のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// updateStatusRequest はステータス更新リクエストのボディ。
type updateStatusRequest struct {
	Status string `json:"status"`
}

// List は呼び出し元が閲覧できるタスクの一覧を返す。
// 従業員は自分に割り当てられたタスクのみ。管理者は全タスクで、
// assignedToクエリによる絞り込みができる。
// GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
		return
	}

	tasks, err := h.service.TasksFor(r.Context(), principal)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// assignedToフィルターは全タスクを見られる管理者のみ有効。
	// 従業員はサービス層で常に自分のタスクに絞られる。
	if assignedTo := r.URL.Query().Get("assignedTo"); assignedTo != "" && access.Project(principal).AllTasks {
		filtered := make([]*model.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.AssignedTo == assignedTo {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTaskResponses(tasks))
}

// Get は単一タスクの詳細（履歴付き）を返す。
// GET /api/tasks/{taskID}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
		return
	}

	task, err := h.service.Get(r.Context(), principal, chi.URLParam(r, "taskID"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTaskResponse(task))
}

// UpdateStatus はタスクのステータスを更新し、履歴エントリを追記する。
// PUT /api/tasks/{taskID}/status
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	task, err := h.service.UpdateStatus(r.Context(), principal, chi.URLParam(r, "taskID"), model.Status(req.Status))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTaskResponse(task))
}
