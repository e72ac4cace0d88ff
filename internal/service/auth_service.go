package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/testhub-backend/internal/models"
	"github.com/ignatzorin/testhub-backend/internal/pkg/apperror"
	"github.com/ignatzorin/testhub-backend/internal/repository"
	"github.com/ignatzorin/testhub-backend/internal/validation"
)

// AuthRepository описывает хранилище пользователей и сессий.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// BalanceInitializer создаёт стартовый баланс токенов пользователю.
type BalanceInitializer interface {
	InitBalance(ctx context.Context, userID uuid.UUID, amount int) error
}

// AuthService реализует регистрацию и аутентификацию.
type AuthService struct {
	users        AuthRepository
	tokens       *TokenManager
	balances     BalanceInitializer
	signupTokens int
	log          *logrus.Entry
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users AuthRepository, tokens *TokenManager, balances BalanceInitializer, signupTokens int) *AuthService {
	return &AuthService{
		users:        users,
		tokens:       tokens,
		balances:     balances,
		signupTokens: signupTokens,
		log:          logrus.WithField("module", "auth_service"),
	}
}

// RegisterInput содержит данные для регистрации.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	Role      string
	FirstName string
	LastName  string
	Phone     string
}

// AuthResult возвращается после регистрации или входа.
type AuthResult struct {
	User   *models.User
	Tokens *TokenPair
}

// Register создаёт нового пользователя.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if _, ok := models.ValidRoles[input.Role]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимая роль")
	}
	// Администраторов через публичную регистрацию не создаём.
	if input.Role == models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "регистрация администратора запрещена")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         input.Role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	profile := &models.Profile{
		UserID:    user.ID,
		FirstName: strPtrOrNil(input.FirstName),
		LastName:  strPtrOrNil(input.LastName),
		Phone:     strPtrOrNil(input.Phone),
	}

	if err := s.users.Create(ctx, user, profile); err != nil {
		if err == repository.ErrDuplicateUser {
			return nil, apperror.New(apperror.ErrCodeConflict, "пользователь с таким email или username уже существует")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать пользователя")
	}

	if input.Role == models.RoleCustomer && s.balances != nil {
		if err := s.balances.InitBalance(ctx, user.ID, s.signupTokens); err != nil {
			s.log.WithError(err).Warn("не удалось создать стартовый баланс")
		}
	}

	pair, refreshExp, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	session := &models.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    refreshExp,
		CreatedAt:    time.Now(),
	}
	if err := s.users.CreateSession(ctx, session); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать сессию")
	}

	user.Profile = profile
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Login проверяет учётные данные и выдаёт токены.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return nil, apperror.New(apperror.ErrCodeUnauthorized, "неверный email или пароль")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось найти пользователя")
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "аккаунт деактивирован")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "неверный email или пароль")
	}

	pair, refreshExp, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	session := &models.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    refreshExp,
		CreatedAt:    time.Now(),
	}
	if err := s.users.CreateSession(ctx, session); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать сессию")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.WithError(err).Warn("не удалось обновить время входа")
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

// Refresh обменивает refresh токен на новую пару.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "недействительный refresh токен")
	}

	session, err := s.users.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "сессия не найдена")
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.users.DeleteSession(ctx, refreshToken)
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "сессия истекла")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID != session.UserID {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "недействительный refresh токен")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, "пользователь не найден")
	}

	if err := s.users.DeleteSession(ctx, refreshToken); err != nil {
		s.log.WithError(err).Warn("не удалось удалить старую сессию")
	}

	pair, refreshExp, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	newSession := &models.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    refreshExp,
		CreatedAt:    time.Now(),
	}
	if err := s.users.CreateSession(ctx, newSession); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать сессию")
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

// Logout удаляет сессию по refresh токену.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.users.DeleteSession(ctx, refreshToken); err != nil && err != repository.ErrSessionNotFound {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось завершить сессию")
	}
	return nil
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
