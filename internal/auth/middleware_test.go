package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func middlewareRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Middleware(testSecret, roles...), func(c *gin.Context) {
		actor := CurrentActor(c)
		c.JSON(http.StatusOK, gin.H{"userId": actor.UserID, "division": actor.Division})
	})
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_MissingToken(t *testing.T) {
	w := doRequest(middlewareRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "access token required")
}

func TestMiddleware_InvalidToken(t *testing.T) {
	w := doRequest(middlewareRouter(), "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or expired token")
}

func TestMiddleware_ExpiredTokenDistinguishable(t *testing.T) {
	token, err := GenerateToken("u1", "user", "", testSecret, -time.Minute)
	require.NoError(t, err)

	w := doRequest(middlewareRouter(), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}

func TestMiddleware_SetsActorContext(t *testing.T) {
	token, err := GenerateToken("u1", "admin", "North", testSecret, time.Hour)
	require.NoError(t, err)

	w := doRequest(middlewareRouter(), token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"u1"`)
	assert.Contains(t, w.Body.String(), `"division":"North"`)
}

func TestMiddleware_RoleEnforcement(t *testing.T) {
	userToken, err := GenerateToken("u1", "user", "", testSecret, time.Hour)
	require.NoError(t, err)
	adminToken, err := GenerateToken("a1", "admin", "North", testSecret, time.Hour)
	require.NoError(t, err)

	r := middlewareRouter("admin")

	w := doRequest(r, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
