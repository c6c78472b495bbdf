package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/scrumdesk/internal/metrics"
	"github.com/hitoshi/scrumdesk/internal/middleware"
)

// HealthChecker はヘルスチェックエンドポイントが使うストア疎通確認のインターフェース。
type HealthChecker interface {
	Ping() error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// 観測
	Collector       metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer
	HealthChecker   HealthChecker

	// 認証
	AuthService   AuthServiceInterface
	SignupService SignupServiceInterface
	AuthConfig    AuthHandlerConfig

	// ドメインサービス
	UserService  UserServiceInterface
	ScrumService ScrumServiceInterface
	TaskService  TaskServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging →（保護ルートのみ）Session → RateLimit(General) → CSRF
//
// ログイン・サインアップ・ヘルスチェック・メトリクスはセッション不要の公開ルート。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))

	authHandler := NewAuthHandler(deps.AuthService, deps.SignupService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	scrumHandler := NewScrumHandler(deps.ScrumService)
	taskHandler := NewTaskHandler(deps.TaskService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// CSRFトークン取得（ログイン前にフロントエンドが取得する）
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/signup", authHandler.Signup)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.UserFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			// POST /api/users - ユーザー作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.CreateMiddleware()).Post("/", userHandler.Create)
		})

		// スクラム管理
		r.Route("/api/scrums", func(r chi.Router) {
			r.Get("/", scrumHandler.List)
			// POST /api/scrums - スクラム＋タスク同時作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.CreateMiddleware()).Post("/", scrumHandler.Create)
			r.Get("/{scrumID}", scrumHandler.Get)
		})

		// タスク管理
		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.Put("/status", taskHandler.UpdateStatus)
			})
		})
	})

	return r
}

// newHealthHandler はストア疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if checker != nil {
			if err := checker.Ping(); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}
