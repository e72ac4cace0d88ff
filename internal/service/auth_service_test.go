package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/testhub-backend/internal/models"
	"github.com/ignatzorin/testhub-backend/internal/pkg/apperror"
	"github.com/ignatzorin/testhub-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User, profile *models.Profile) error {
	args := m.Called(ctx, user, profile)
	return args.Error(0)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepo) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type mockBalanceInitializer struct {
	mock.Mock
}

func (m *mockBalanceInitializer) InitBalance(ctx context.Context, userID uuid.UUID, amount int) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:    "customer@example.com",
		Username: "customer1",
		Password: "Password1",
		Role:     models.RoleCustomer,
	}
}

func TestAuthService_Register_Customer(t *testing.T) {
	repo := new(mockAuthRepo)
	balances := new(mockBalanceInitializer)
	svc := NewAuthService(repo, newTestTokenManager(), balances, 10)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.User"), mock.AnythingOfType("*models.Profile")).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)
	balances.On("InitBalance", ctx, mock.AnythingOfType("uuid.UUID"), 10).Return(nil)

	result, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	assert.Equal(t, models.RoleCustomer, result.User.Role)
	assert.True(t, result.User.IsActive)
	assert.NotEqual(t, "Password1", result.User.PasswordHash)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	repo.AssertExpectations(t)
	balances.AssertExpectations(t)
}

func TestAuthService_Register_TesterGetsNoBalance(t *testing.T) {
	repo := new(mockAuthRepo)
	balances := new(mockBalanceInitializer)
	svc := NewAuthService(repo, newTestTokenManager(), balances, 10)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	input := validRegisterInput()
	input.Role = models.RoleTester

	_, err := svc.Register(ctx, input)
	require.NoError(t, err)
	balances.AssertNotCalled(t, "InitBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Register_AdminForbidden(t *testing.T) {
	svc := NewAuthService(new(mockAuthRepo), newTestTokenManager(), nil, 10)

	input := validRegisterInput()
	input.Role = models.RoleAdmin

	_, err := svc.Register(context.Background(), input)
	assert.True(t, apperror.IsForbidden(err))
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	svc := NewAuthService(new(mockAuthRepo), newTestTokenManager(), nil, 10)
	ctx := context.Background()

	bad := validRegisterInput()
	bad.Email = "not-an-email"
	_, err := svc.Register(ctx, bad)
	assert.True(t, apperror.IsValidation(err))

	bad = validRegisterInput()
	bad.Password = "short"
	_, err = svc.Register(ctx, bad)
	assert.True(t, apperror.IsValidation(err))

	bad = validRegisterInput()
	bad.Role = "superuser"
	_, err = svc.Register(ctx, bad)
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Register_DuplicateUser(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager(), nil, 10)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything, mock.Anything).Return(repository.ErrDuplicateUser)

	_, err := svc.Register(ctx, validRegisterInput())
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager(), nil, 10)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID: uuid.New(), Email: "customer@example.com",
		PasswordHash: string(hash), Role: models.RoleCustomer, IsActive: true,
	}

	repo.On("GetByEmail", ctx, user.Email).Return(user, nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)
	repo.On("UpdateLastLogin", ctx, user.ID).Return(nil)

	result, err := svc.Login(ctx, user.Email, "Password1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager(), nil, 10)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: "c@x.com", PasswordHash: string(hash), IsActive: true}

	repo.On("GetByEmail", ctx, user.Email).Return(user, nil)

	_, err = svc.Login(ctx, user.Email, "WrongPassword1")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager(), nil, 10)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ghost@x.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, "ghost@x.com", "Password1")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	// та же формулировка, что и при неверном пароле: email не раскрывается
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager(), nil, 10)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "c@x.com", IsActive: false}
	repo.On("GetByEmail", ctx, user.Email).Return(user, nil)

	_, err := svc.Login(ctx, user.Email, "Password1")
	assert.True(t, apperror.IsForbidden(err))
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	repo := new(mockAuthRepo)
	tm := newTestTokenManager()
	svc := NewAuthService(repo, tm, nil, 10)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Role: models.RoleCustomer, IsActive: true}
	pair, refreshExp, err := tm.GeneratePair(user)
	require.NoError(t, err)

	session := &models.Session{
		ID: uuid.New(), UserID: user.ID,
		RefreshToken: pair.RefreshToken, ExpiresAt: refreshExp,
	}

	repo.On("GetSessionByToken", ctx, pair.RefreshToken).Return(session, nil)
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	result, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, result.Tokens.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_ExpiredSession(t *testing.T) {
	repo := new(mockAuthRepo)
	tm := newTestTokenManager()
	svc := NewAuthService(repo, tm, nil, 10)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
	pair, _, err := tm.GeneratePair(user)
	require.NoError(t, err)

	session := &models.Session{
		ID: uuid.New(), UserID: user.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    time.Now().Add(-time.Hour),
	}

	repo.On("GetSessionByToken", ctx, pair.RefreshToken).Return(session, nil)
	repo.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeUnauthorized, appErr.Code)
	repo.AssertCalled(t, "DeleteSession", ctx, pair.RefreshToken)
}

func TestAuthService_Logout_UnknownSessionIsFine(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager(), nil, 10)
	ctx := context.Background()

	repo.On("DeleteSession", ctx, "some-token").Return(repository.ErrSessionNotFound)

	assert.NoError(t, svc.Logout(ctx, "some-token"))
}
