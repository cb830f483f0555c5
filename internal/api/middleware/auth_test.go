package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func authRouter(hash string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AdminAuthMiddleware(hash, zap.NewNop()))
	router.GET("/ping", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return router
}

func get(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	hash, err := HashAPIKey("secret-admin-key")
	require.NoError(t, err)
	router := authRouter(hash)

	assert.Equal(t, http.StatusUnauthorized, get(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "secret-admin-key").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "Bearer wrong-key").Code)
	assert.Equal(t, http.StatusOK, get(router, "Bearer secret-admin-key").Code)
}

func TestAdminAuthDisabledWithoutHash(t *testing.T) {
	router := authRouter("")
	assert.Equal(t, http.StatusOK, get(router, "").Code)
}

func TestVerifyAPIKey(t *testing.T) {
	hash, err := HashAPIKey("a-key")
	require.NoError(t, err)
	assert.True(t, VerifyAPIKey("a-key", hash))
	assert.False(t, VerifyAPIKey("another-key", hash))
}
