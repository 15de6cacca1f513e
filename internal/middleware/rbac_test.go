package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/schoolware/timetable-api/internal/models"
)

func runRBAC(t *testing.T, claims *models.JWTClaims, roles ...string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/timetable/generate", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	RequireRoles(roles...)(c)
	return rec, c
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	rec, c := runRBAC(t, &models.JWTClaims{UserID: "user-1", Role: "scheduler"}, "admin", "scheduler")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, c.IsAborted())
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	rec, c := runRBAC(t, &models.JWTClaims{UserID: "user-1", Role: "viewer"}, "admin", "scheduler")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.True(t, c.IsAborted())
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	rec, c := runRBAC(t, nil, "admin")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, c.IsAborted())
}
