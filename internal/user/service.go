// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/scrumdesk/internal/access"
	"github.com/hitoshi/scrumdesk/internal/metrics"
	"github.com/hitoshi/scrumdesk/internal/model"
	"github.com/hitoshi/scrumdesk/internal/repository"
)

const (
	// minNameLength は氏名の最小文字数。
	minNameLength = 3
	// minPasswordLength はパスワードの最小文字数。
	minPasswordLength = 6
)

// emailPattern はメールアドレスの形式検証パターン。
// 空白を含まない local@domain.tld の形式のみ許可する。
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// TextSanitizer はユーザー入力のサニタイズインターフェース。
type TextSanitizer interface {
	SanitizeText(input string) string
}

// ServiceConfig はユーザーサービスの設定。
type ServiceConfig struct {
	// AllowDuplicateEmail はメールアドレスの重複登録を許可する。
	// 許可した場合、ログインは最初に登録された一致ユーザーとして成立する。
	AllowDuplicateEmail bool
}

// Service はユーザー管理のサービス層。
// セルフサインアップと管理者によるユーザー作成・一覧を提供する。
type Service struct {
	userRepo  repository.UserRepository
	sanitizer TextSanitizer
	collector metrics.MetricsCollector // nilの場合は記録しない
	config    ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。collectorはnilを許容する。
func NewService(
	userRepo repository.UserRepository,
	sanitizer TextSanitizer,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:  userRepo,
		sanitizer: sanitizer,
		collector: collector,
		config:    config,
	}
}

// Signup はセルフサインアップでユーザーを作成する。
// ロールは呼び出し側の申告に関係なく常にemployeeになる。
// 管理者アカウントはこの経路では作成できない。
func (s *Service) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	user, err := s.create(ctx, name, email, password, model.RoleEmployee)
	if err != nil {
		return nil, err
	}

	if s.collector != nil {
		s.collector.RecordSignup()
	}
	slog.Info("user signed up", slog.String("user_id", user.ID))
	return user, nil
}

// Create は管理者によるユーザー作成を行う。任意のロールを指定できる。
func (s *Service) Create(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, model.NewInvalidRoleError(string(role))
	}

	user, err := s.create(ctx, name, email, password, role)
	if err != nil {
		return nil, err
	}

	slog.Info("user created",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// create は検証・採番・永続化の共通処理。
// 検証はすべてストア書き込みの前に行い、部分状態を作らない。
func (s *Service) create(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	name = s.sanitizer.SanitizeText(name)
	email = strings.TrimSpace(email)

	if len([]rune(name)) < minNameLength {
		return nil, model.NewValidationError(fmt.Sprintf("氏名は%d文字以上で入力してください", minNameLength))
	}
	if !emailPattern.MatchString(email) {
		return nil, model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	if len(password) < minPasswordLength {
		return nil, model.NewValidationError(fmt.Sprintf("パスワードは%d文字以上で入力してください", minPasswordLength))
	}

	if !s.config.AllowDuplicateEmail {
		existing, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("メールアドレスの重複確認に失敗しました: %w", err)
		}
		if existing != nil {
			return nil, model.NewEmailTakenError(email)
		}
	}

	user := &model.User{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	return user, nil
}

// Get は指定IDのユーザーを取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// ManageableUsers は管理対象となるユーザーの一覧を返す。管理者のみ。
// 一覧からは管理者アカウント（操作主体自身を含む）が除外される。
// 従業員には管理対象が存在しないため、この操作には到達できない。
// 従業員が自分自身を参照する経路は認証のCurrentUser。
func (s *Service) ManageableUsers(ctx context.Context, principal *model.User) ([]*model.User, error) {
	if !access.Project(principal).ManageUsers {
		return nil, model.NewForbiddenError()
	}

	users, err := s.userRepo.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	return access.FilterManageable(users), nil
}
