package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/internal/config"
	"github.com/scienceol/labinv/pkg/common"
	"github.com/scienceol/labinv/pkg/common/uuid"
	"github.com/scienceol/labinv/pkg/middleware/auth"
	"github.com/scienceol/labinv/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	g.GET("/me", auth.AuthWeb(), func(ctx *gin.Context) {
		u := auth.GetCurrentUser(ctx)
		ctx.JSON(http.StatusOK, gin.H{"name": u.FullName, "role": u.Role})
	})
	g.GET("/admin", auth.AuthWeb(), auth.RequireRole(common.Admin), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return g
}

func token(t *testing.T, role common.Role, ttl time.Duration) string {
	conf := config.Global().Auth
	tk, err := utils.SignJWT([]byte(conf.JWTSecret), &utils.Claims{
		UserID:   7,
		UUID:     uuid.NewV4().String(),
		Role:     string(role),
		FullName: "Ada",
	}, ttl, conf.Issuer)
	require.NoError(t, err)
	return tk
}

func do(g *gin.Engine, path, authz string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	g.ServeHTTP(w, req)
	return w
}

func TestAuthWeb(t *testing.T) {
	g := newEngine()

	assert.Equal(t, http.StatusUnauthorized, do(g, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(g, "/me", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(g, "/me", "Bearer not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, do(g, "/me", "Bearer "+token(t, common.Student, -time.Minute)).Code)

	w := do(g, "/me", "Bearer "+token(t, common.Student, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Ada","role":"student"}`, w.Body.String())

	w = do(g, "/me?access_token="+token(t, common.Faculty, time.Hour), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	g := newEngine()

	assert.Equal(t, http.StatusForbidden, do(g, "/admin", "Bearer "+token(t, common.Faculty, time.Hour)).Code)
	assert.Equal(t, http.StatusNoContent, do(g, "/admin", "Bearer "+token(t, common.Admin, time.Hour)).Code)
}
