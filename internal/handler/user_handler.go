package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/scrumdesk/internal/access"
	"github.com/hitoshi/scrumdesk/internal/middleware"
	"github.com/hitoshi/scrumdesk/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Create(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	ManageableUsers(ctx context.Context, principal *model.User) ([]*model.User, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// createUserRequest は管理者によるユーザー作成リクエストのボディ。
type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List は呼び出し元が管理できるユーザーの一覧を返す。
// 管理者は管理者以外の全ユーザー、従業員は自分自身のみ。
// GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
		return
	}

	users, err := h.service.ManageableUsers(r.Context(), principal)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponses(users))
}

// Create は管理者によるユーザー作成を処理する。ロールを指定できる。
// POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewAuthFailedError())
		return
	}
	if !access.Project(principal).ManageUsers {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, err := h.service.Create(r.Context(), req.Name, req.Email, req.Password, model.Role(req.Role))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toUserResponse(user))
}
