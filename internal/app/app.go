package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/scrumdesk/internal/auth"
	"github.com/hitoshi/scrumdesk/internal/config"
	"github.com/hitoshi/scrumdesk/internal/database"
	"github.com/hitoshi/scrumdesk/internal/handler"
	"github.com/hitoshi/scrumdesk/internal/logger"
	"github.com/hitoshi/scrumdesk/internal/metrics"
	"github.com/hitoshi/scrumdesk/internal/middleware"
	"github.com/hitoshi/scrumdesk/internal/recordstore"
	"github.com/hitoshi/scrumdesk/internal/repository"
	"github.com/hitoshi/scrumdesk/internal/scrum"
	"github.com/hitoshi/scrumdesk/internal/security"
	"github.com/hitoshi/scrumdesk/internal/task"
	"github.com/hitoshi/scrumdesk/internal/user"
)

// stores は選択されたバックエンドのリポジトリ一式をまとめた構造体。
type stores struct {
	userRepo    repository.UserRepository
	scrumRepo   repository.ScrumRepository
	taskRepo    repository.TaskRepository
	sessionRepo repository.SessionRepository

	healthChecker handler.HealthChecker

	// close はバックエンドが保持するリソースを解放する。
	close func() error
}

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("backend", cfg.StoreBackend),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// 設定に応じたバックエンドを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ストアバックエンドの初期化
	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. セキュリティサービスの初期化
	sanitizer := security.NewInputSanitizer()

	// 4. ドメインサービスの初期化
	verifier := auth.NewPlaintextVerifier(st.userRepo)
	authService := auth.NewService(
		verifier, st.userRepo, st.sessionRepo, collector,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	userService := user.NewService(
		st.userRepo, sanitizer, collector,
		user.ServiceConfig{AllowDuplicateEmail: cfg.AllowDuplicateEmail},
	)
	scrumService := scrum.NewService(st.scrumRepo, st.taskRepo, st.userRepo, sanitizer, collector)
	taskService := task.NewService(st.taskRepo, collector)

	// 5. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = perMinute(cfg.RateLimitGeneral)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.CreateRate = perMinute(cfg.RateLimitCreate)
	rateLimiterCfg.CreateBurst = cfg.RateLimitCreate
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionFinder:     st.sessionRepo,
		UserFinder:        st.userRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Logger: slog.Default(),

		Collector:       collector,
		MetricsGatherer: registry,
		HealthChecker:   st.healthChecker,

		AuthService:   authService,
		SignupService: userService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		UserService:  userService,
		ScrumService: scrumService,
		TaskService:  taskService,
	}

	router := handler.NewRouter(deps)

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// openStores は設定されたバックエンドのリポジトリ一式を初期化する。
func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendRecord:
		return openRecordStores(cfg)
	default:
		return openPostgresStores(cfg)
	}
}

// openPostgresStores はPostgreSQLバックエンドのリポジトリ一式を初期化する。
func openPostgresStores(cfg *config.Config) (*stores, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	return &stores{
		userRepo:      repository.NewPostgresUserRepo(db),
		scrumRepo:     repository.NewPostgresScrumRepo(db),
		taskRepo:      repository.NewPostgresTaskRepo(db),
		sessionRepo:   repository.NewPostgresSessionRepo(db),
		healthChecker: db,
		close:         db.Close,
	}, nil
}

// openRecordStores はレコードストアバックエンドのリポジトリ一式を初期化する。
// ベースURLはSSRF防止の観点から起動時に検証し、HTTPクライアントにも
// safeurlによる防御を重ねる。
func openRecordStores(cfg *config.Config) (*stores, error) {
	guard := security.NewStoreGuard()
	if err := guard.ValidateBaseURL(cfg.RecordStoreURL); err != nil {
		return nil, fmt.Errorf("invalid record store URL: %w", err)
	}

	httpClient := guard.NewSafeClient(cfg.StoreTimeout, cfg.StoreAllowedPort)
	client := recordstore.NewClient(httpClient, cfg.RecordStoreURL, slog.Default())

	slog.Info("record store client initialized",
		slog.String("base_url", cfg.RecordStoreURL),
	)

	return &stores{
		userRepo:      recordstore.NewUserRepo(client),
		scrumRepo:     recordstore.NewScrumRepo(client),
		taskRepo:      recordstore.NewTaskRepo(client),
		sessionRepo:   recordstore.NewSessionRepo(client),
		healthChecker: client,
		close:         func() error { return nil },
	}, nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
// レコードストアバックエンドはスキーマレスのため対象外。
func runMigrate(cfg *config.Config) error {
	if cfg.StoreBackend != config.BackendPostgres {
		return fmt.Errorf("migrate is only supported for the postgres backend (STORE_BACKEND=%q)", cfg.StoreBackend)
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// perMinute はreq/minの設定値をrate.Limit（req/sec）へ変換する。
func perMinute(n int) rate.Limit {
	return rate.Limit(float64(n) / 60.0)
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
