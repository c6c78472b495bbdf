package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/scrumdesk/internal/access"
	"github.com/hitoshi/scrumdesk/internal/middleware"
	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/scrum"
)

// ScrumServiceInterface はスクラムハンドラーが必要とするサービスインターフェース。
type ScrumServiceInterface interface {
	CreateScrumWithTask(ctx context.Context, scrumName string, task scrum.TaskInput) (*model.Scrum, *model.Task, error)
	List(ctx context.Context) ([]*model.Scrum, error)
	GetDetails(ctx context.Context, scrumID string) (*scrum.Details, error)
}

// ScrumHandler はスクラム管理のHTTPハンドラー。
type ScrumHandler struct {
	service ScrumServiceInterface
}

// NewScrumHandler はScrumHandlerを生成する。
func NewScrumHandler(service ScrumServiceInterface) *ScrumHandler {
	return &ScrumHandler{service: service}
}

// createScrumRequest はスクラム作成リクエストのボディ。
// スクラムは必ず最初のタスクと同時に作成される。
type createScrumRequest struct {
	Name string `json:"name"`
	Task struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
		AssignedTo  string `json:"assignedTo"`
	} `json:"task"`
}

// createScrumResponse はスクラム作成成功時のレスポンス。
type createScrumResponse struct {
	Scrum scrumResponse `json:"scrum"`
	Task  taskResponse  `json:"task"`
}

// scrumDetailsResponse はスクラム詳細のレスポンス。
type scrumDetailsResponse struct {
	Scrum scrumResponse  `json:"scrum"`
	Tasks []taskResponse `json:"tasks"`
}

// Create はスクラムと最初のタスクの同時作成を処理する。管理者のみ。
// POST /api/scrums
func (h *ScrumHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
		return
	}
	if !access.Project(principal).CreateScrums {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	var req createScrumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	created, task, err := h.service.CreateScrumWithTask(r.Context(), req.Name, scrum.TaskInput{
		Title:       req.Task.Title,
		Description: req.Task.Description,
		Status:      model.Status(req.Task.Status),
		AssignedTo:  req.Task.AssignedTo,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createScrumResponse{
		Scrum: toScrumResponse(created),
		Task:  toTaskResponse(task),
	})
}

// List はスクラムの一覧を返す。管理者のみ。
// 従業員にはスクラム一覧は存在せず、担当タスクの一覧だけが見える。
// GET /api/scrums
func (h *ScrumHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
		return
	}
	if !access.Project(principal).AllScrums {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	scrums, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]scrumResponse, 0, len(scrums))
	for _, s := range scrums {
		out = append(out, toScrumResponse(s))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Get はスクラムと所属タスクの詳細を返す。管理者のみ。
// 詳細には全担当者のタスクが含まれるため、担当者スコープの従業員には開放しない。
// GET /api/scrums/{scrumID}
func (h *ScrumHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
		return
	}
	if !access.Project(principal).AllScrums {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	scrumID := chi.URLParam(r, "scrumID")

	details, err := h.service.GetDetails(r.Context(), scrumID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scrumDetailsResponse{
		Scrum: toScrumResponse(details.Scrum),
		Tasks: toTaskResponses(details.Tasks),
	})
}
