package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/models"
	appErrors "github.com/schoolware/timetable-api/pkg/errors"
)

type mockUserRepo struct {
	users  map[string]*models.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = updatedAt
	return nil
}

func (m *mockUserRepo) seedUser(t *testing.T, email, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{Email: email, PasswordHash: string(hash), Name: "Test User", Role: role}
	require.NoError(t, m.Create(context.Background(), user))
	return user
}

func newAuthFixture(t *testing.T) (*mockUserRepo, *AuthService) {
	t.Helper()
	repo := newMockUserRepo()
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		Secret:            "test-secret",
		AccessTokenExpiry: time.Hour,
		RefreshExpiry:     24 * time.Hour,
	})
	return repo, svc
}

func TestAuthServiceLoginIssuesValidTokenPair(t *testing.T) {
	repo, svc := newAuthFixture(t)
	user := repo.seedUser(t, "admin@example.com", "sw0rdfish", "admin")

	pair, loggedIn, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "sw0rdfish"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo, svc := newAuthFixture(t)
	repo.seedUser(t, "admin@example.com", "sw0rdfish", "admin")

	_, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	repo, svc := newAuthFixture(t)
	repo.seedUser(t, "admin@example.com", "sw0rdfish", "admin")

	_, _, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "admin@example.com",
		Password: "longenough",
		Name:     "Second Admin",
		Role:     "admin",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterHashesPassword(t *testing.T) {
	repo, svc := newAuthFixture(t)

	_, user, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "planner@example.com",
		Password: "longenough",
		Name:     "Planner",
		Role:     "scheduler",
	})
	require.NoError(t, err)

	stored := repo.users[user.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "longenough", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenough")))
}

func TestAuthServiceRefreshRotatesTokens(t *testing.T) {
	repo, svc := newAuthFixture(t)
	user := repo.seedUser(t, "admin@example.com", "sw0rdfish", "admin")

	pair, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "sw0rdfish"})
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthServiceRefreshRejectsAccessToken(t *testing.T) {
	repo, svc := newAuthFixture(t)
	repo.seedUser(t, "admin@example.com", "sw0rdfish", "admin")

	pair, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "sw0rdfish"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: pair.AccessToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRejectsDeletedUser(t *testing.T) {
	repo, svc := newAuthFixture(t)
	user := repo.seedUser(t, "admin@example.com", "sw0rdfish", "admin")

	pair, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "sw0rdfish"})
	require.NoError(t, err)

	delete(repo.users, user.ID)
	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsRefreshToken(t *testing.T) {
	repo, svc := newAuthFixture(t)
	repo.seedUser(t, "admin@example.com", "sw0rdfish", "admin")

	pair, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "sw0rdfish"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsForeignSignature(t *testing.T) {
	repo, _ := newAuthFixture(t)
	repo.seedUser(t, "admin@example.com", "sw0rdfish", "admin")

	other := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "other-secret"})
	pair, _, err := other.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "sw0rdfish"})
	require.NoError(t, err)

	_, svc := newAuthFixture(t)
	_, err = svc.ValidateToken(pair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePasswordWrongCurrent(t *testing.T) {
	repo, svc := newAuthFixture(t)
	user := repo.seedUser(t, "admin@example.com", "sw0rdfish", "admin")

	err := svc.ChangePassword(context.Background(), user.ID, dto.ChangePasswordRequest{
		CurrentPassword: "not-it",
		NewPassword:     "replacement",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePasswordRotatesHash(t *testing.T) {
	repo, svc := newAuthFixture(t)
	user := repo.seedUser(t, "admin@example.com", "sw0rdfish", "admin")

	err := svc.ChangePassword(context.Background(), user.ID, dto.ChangePasswordRequest{
		CurrentPassword: "sw0rdfish",
		NewPassword:     "replacement",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "replacement"})
	require.NoError(t, err)
	_, _, err = svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "sw0rdfish"})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}
