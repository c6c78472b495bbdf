package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/scrumdesk/internal/metrics"
	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
// ログイン成功時にセッションを発行し、ログアウト時に破棄する。
type Service struct {
	verifier    CredentialVerifier
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	collector   metrics.MetricsCollector // nilの場合は記録しない
	config      ServiceConfig
}

// NewService はServiceを生成する。collectorはnilを許容する。
func NewService(
	verifier CredentialVerifier,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		verifier:    verifier,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		collector:   collector,
		config:      config,
	}
}

// Login は資格情報を照合し、成功時にセッションを発行する。
// 認証失敗の理由（メール不在かパスワード不一致か）は意図的に区別しない。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
	if email == "" || password == "" {
		return nil, nil, model.NewValidationError("メールアドレスとパスワードは必須です")
	}

	user, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		if s.collector != nil {
			s.collector.RecordAuthFailure()
		}
		slog.Warn("login failed", slog.String("email", email))
		return nil, nil, model.NewAuthFailedError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	if s.collector != nil {
		s.collector.RecordLoginSuccess()
	}
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return session, user, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// CurrentUser はセッションIDから現在のユーザーを取得する。
// セッションが存在しない・期限切れの場合はAUTH_FAILEDのエラーを返す。
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewAuthFailedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	if session == nil {
		return nil, model.NewAuthFailedError()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewAuthFailedError()
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("セッションIDの生成に失敗しました: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
