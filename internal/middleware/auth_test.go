package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": uint(7),
		"email":   "user@medicore.test",
		"role":    role,
		"exp":     time.Now().Add(expiresIn).Unix(),
		"iat":     time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return token
}

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetUserRole(c)})
	})
	router.GET("/protected", handlers...)
	return router
}

func request(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuth_ValidToken(t *testing.T) {
	router := protectedRouter()
	token := signToken(t, models.RoleAccounts, time.Hour)

	w := request(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
	assert.Contains(t, w.Body.String(), `"role":"accounts"`)
}

func TestAuth_MissingHeader(t *testing.T) {
	w := request(protectedRouter(), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
}

func TestAuth_MalformedHeader(t *testing.T) {
	w := request(protectedRouter(), "Token abc123")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid authorization header format")
}

func TestAuth_ExpiredToken(t *testing.T) {
	token := signToken(t, models.RoleAdmin, -time.Hour)

	w := request(protectedRouter(), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token has expired")
}

func TestAuth_WrongSecret(t *testing.T) {
	claims := jwt.MapClaims{"user_id": uint(7), "role": models.RoleAdmin, "exp": time.Now().Add(time.Hour).Unix()}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))

	w := request(protectedRouter(), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_TokenFromQueryParam(t *testing.T) {
	router := protectedRouter()
	token := signToken(t, models.RoleAccounts, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePrivilege_RoleGating(t *testing.T) {
	router := protectedRouter(RequirePrivilege(models.PrivilegeManageInstallments))

	w := request(router, "Bearer "+signToken(t, models.RoleAccounts, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, "Bearer "+signToken(t, models.RoleEditor, time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "You do not have access to this section")
}

func TestRequireAdmin(t *testing.T) {
	router := protectedRouter(RequireAdmin())

	w := request(router, "Bearer "+signToken(t, models.RoleAdmin, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, "Bearer "+signToken(t, models.RoleAccounts, time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
