package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authTestRouter() *gin.Engine {
	r := gin.New()
	r.GET("/probe", AuthenticatedMiddleware(), func(c *gin.Context) {
		user, err := utils.GetActiveUser(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": user.UserID})
	})
	return r
}

func TestAuthenticatedMiddlewareAcceptsBearerToken(t *testing.T) {
	TokenController = utils.NewJWTToken(&utils.Config{SigningKey: "test-signing-key"})
	token, err := TokenController.CreateToken(utils.TokenObject{UserID: 7, Role: "user", Verified: true})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestAuthenticatedMiddlewareRejectsMissingHeader(t *testing.T) {
	TokenController = utils.NewJWTToken(&utils.Config{SigningKey: "test-signing-key"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	authTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatedMiddlewareRejectsNonBearerScheme(t *testing.T) {
	TokenController = utils.NewJWTToken(&utils.Config{SigningKey: "test-signing-key"})
	token, err := TokenController.CreateToken(utils.TokenObject{UserID: 7})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Basic "+token)
	authTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatedMiddlewareRejectsForgedToken(t *testing.T) {
	other := utils.NewJWTToken(&utils.Config{SigningKey: "someone-elses-key"})
	token, err := other.CreateToken(utils.TokenObject{UserID: 7})
	require.NoError(t, err)

	TokenController = utils.NewJWTToken(&utils.Config{SigningKey: "test-signing-key"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSMiddlewareShortCircuitsPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.POST("/anything", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/anything", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestRateLimitMiddlewareBlocksAfterBurst(t *testing.T) {
	r := gin.New()
	r.GET("/login", RateLimitMiddleware(1, 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.RemoteAddr = "203.0.113.9:4455"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitMiddlewareIsPerClient(t *testing.T) {
	r := gin.New()
	r.GET("/login", RateLimitMiddleware(1, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.RemoteAddr = "203.0.113.9:4455"
	r.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	blocked := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.RemoteAddr = "203.0.113.9:4455"
	r.ServeHTTP(blocked, req)
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)

	other := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.RemoteAddr = "198.51.100.14:4455"
	r.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}
