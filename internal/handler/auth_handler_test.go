package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/scrumdesk/internal/middleware"
	"github.com/hitoshi/scrumdesk/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	loginFn       func(ctx context.Context, email, password string) (*model.Session, *model.User, error)
	logoutFn      func(ctx context.Context, sessionID string) error
	currentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, sessionID)
	}
	return nil, nil
}

// mockSignupService はSignupServiceInterfaceのモック実装。
type mockSignupService struct {
	signupFn func(ctx context.Context, name, email, password string) (*model.User, error)
}

func (m *mockSignupService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, name, email, password)
	}
	return nil, nil
}

// --- テストヘルパー ---

// withPrincipal はテスト用にリクエストコンテキストにログインユーザーを注入するヘルパー。
func withPrincipal(r *http.Request, principal *model.User) *http.Request {
	ctx := middleware.ContextWithPrincipal(r.Context(), principal)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// findCookie はレスポンスから指定名のCookieを探すヘルパー。
func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func adminUser() *model.User {
	return &model.User{ID: "admin-1", Name: "管理者", Email: "admin@example.com", Role: model.RoleAdmin}
}

func employeeUser() *model.User {
	return &model.User{ID: "emp-1", Name: "従業員", Email: "emp@example.com", Role: model.RoleEmployee}
}

// --- テスト ---

// TestAuthHandler_Login_Success はログイン成功時にセッションCookieが
// 設定されユーザー情報が返されることを検証する。
func TestAuthHandler_Login_Success(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
			return &model.Session{ID: "sess-abc", UserID: "emp-1", ExpiresAt: time.Now().Add(24 * time.Hour)},
				employeeUser(), nil
		},
	}
	h := NewAuthHandler(service, &mockSignupService{}, AuthHandlerConfig{SessionMaxAge: 86400})

	body, _ := json.Marshal(map[string]string{"email": "emp@example.com", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	cookie := findCookie(w, "session_id")
	if cookie == nil {
		t.Fatal("expected session_id cookie to be set")
	}
	if cookie.Value != "sess-abc" {
		t.Errorf("cookie value = %q, want sess-abc", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("session cookie must be SameSite=Lax")
	}

	var resp userResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "emp-1" {
		t.Errorf("user id = %q, want emp-1", resp.ID)
	}
	if resp.Role != "employee" {
		t.Errorf("role = %q, want employee", resp.Role)
	}
}

// TestAuthHandler_Login_InvalidCredentials は認証失敗が401になり、
// Cookieが設定されないことを検証する。
func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
			return nil, nil, model.NewAuthFailedError()
		},
	}
	h := NewAuthHandler(service, &mockSignupService{}, AuthHandlerConfig{SessionMaxAge: 86400})

	body, _ := json.Marshal(map[string]string{"email": "emp@example.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if findCookie(w, "session_id") != nil {
		t.Error("session cookie must not be set on failed login")
	}
	resp := parseAPIErrorResponse(t, w)
	if resp["code"] != model.ErrCodeAuthFailed {
		t.Errorf("code = %q, want AUTH_FAILED", resp["code"])
	}
}

// TestAuthHandler_Login_InvalidBody は不正なJSONが400になることを検証する。
func TestAuthHandler_Login_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockSignupService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{invalid")))
	w := httptest.NewRecorder()
	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// TestAuthHandler_Signup_Returns201 はサインアップ成功時に201が返り、
// パスワードがレスポンスに含まれないことを検証する。
func TestAuthHandler_Signup_Returns201(t *testing.T) {
	signup := &mockSignupService{
		signupFn: func(ctx context.Context, name, email, password string) (*model.User, error) {
			return &model.User{ID: "u-new", Name: name, Email: email, Role: model.RoleEmployee}, nil
		},
	}
	h := NewAuthHandler(&mockAuthService{}, signup, AuthHandlerConfig{})

	body, _ := json.Marshal(map[string]string{
		"name": "新規ユーザー", "email": "new@example.com", "password": "secret123",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Signup(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if findCookie(w, "session_id") != nil {
		t.Error("signup must not create a session")
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := raw["password"]; ok {
		t.Error("response must not contain password")
	}
	if raw["role"] != "employee" {
		t.Errorf("role = %v, want employee", raw["role"])
	}
}

// TestAuthHandler_Signup_EmailTaken はメール重複が409になることを検証する。
func TestAuthHandler_Signup_EmailTaken(t *testing.T) {
	signup := &mockSignupService{
		signupFn: func(ctx context.Context, name, email, password string) (*model.User, error) {
			return nil, model.NewEmailTakenError(email)
		},
	}
	h := NewAuthHandler(&mockAuthService{}, signup, AuthHandlerConfig{})

	body, _ := json.Marshal(map[string]string{
		"name": "新規ユーザー", "email": "taken@example.com", "password": "secret123",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Signup(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

// TestAuthHandler_Logout_ClearsCookie はログアウトがセッションを破棄し、
// Cookieをクリアすることを検証する。
func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var deletedSessionID string
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deletedSessionID = sessionID
			return nil
		},
	}
	h := NewAuthHandler(service, &mockSignupService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-abc"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if deletedSessionID != "sess-abc" {
		t.Errorf("deleted session = %q, want sess-abc", deletedSessionID)
	}

	cookie := findCookie(w, "session_id")
	if cookie == nil {
		t.Fatal("expected session cookie to be cleared")
	}
	if cookie.MaxAge != -1 {
		t.Errorf("cookie MaxAge = %d, want -1", cookie.MaxAge)
	}
}

// TestAuthHandler_Logout_ServiceFailure_StillClearsCookie はストア側の
// 削除失敗でもCookieがクリアされることを検証する。
func TestAuthHandler_Logout_ServiceFailure_StillClearsCookie(t *testing.T) {
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			return model.NewStoreUnavailableError("connection refused")
		},
	}
	h := NewAuthHandler(service, &mockSignupService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-abc"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	cookie := findCookie(w, "session_id")
	if cookie == nil || cookie.MaxAge != -1 {
		t.Error("expected session cookie to be cleared even when the store fails")
	}
}

// TestAuthHandler_Me_ReturnsCurrentUser はセッションCookieから
// 現在のユーザー情報が返されることを検証する。
func TestAuthHandler_Me_ReturnsCurrentUser(t *testing.T) {
	service := &mockAuthService{
		currentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			if sessionID != "sess-abc" {
				t.Errorf("sessionID = %q, want sess-abc", sessionID)
			}
			return adminUser(), nil
		},
	}
	h := NewAuthHandler(service, &mockSignupService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-abc"})
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	var resp userResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Role != "admin" {
		t.Errorf("role = %q, want admin", resp.Role)
	}
}

// TestAuthHandler_Me_NoCookie_Returns401 はCookieなしのアクセスが401になることを検証する。
func TestAuthHandler_Me_NoCookie_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockSignupService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
