package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolware/timetable-api/internal/dto"
	"github.com/schoolware/timetable-api/internal/models"
	"github.com/schoolware/timetable-api/internal/service"
)

type userRepoStub struct {
	user *models.User
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user != nil && s.user.Email == email {
		copied := *s.user
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		copied := *s.user
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	s.user = user
	return nil
}

func (s *userRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return nil
}

func newAuthService(t *testing.T) (*service.AuthService, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("sw0rdfish"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &userRepoStub{user: &models.User{ID: "user-1", Email: "admin@example.com", PasswordHash: string(hash), Role: "admin"}}
	svc := service.NewAuthService(repo, nil, nil, service.AuthConfig{Secret: "test-secret"})

	pair, _, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "sw0rdfish"})
	require.NoError(t, err)
	return svc, pair.AccessToken
}

func runJWT(t *testing.T, svc *service.AuthService, authorization string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/timetable", nil)
	if authorization != "" {
		c.Request.Header.Set("Authorization", authorization)
	}
	JWT(svc)(c)
	return rec, c
}

func TestJWTMissingHeader(t *testing.T) {
	svc, _ := newAuthService(t)

	rec, c := runJWT(t, svc, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTMalformedHeader(t *testing.T) {
	svc, token := newAuthService(t)

	rec, _ := runJWT(t, svc, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTInvalidToken(t *testing.T) {
	svc, _ := newAuthService(t)

	rec, _ := runJWT(t, svc, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTValidTokenSetsClaims(t *testing.T) {
	svc, token := newAuthService(t)

	rec, c := runJWT(t, svc, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, c.IsAborted())

	value, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	claims, ok := value.(*models.JWTClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}
