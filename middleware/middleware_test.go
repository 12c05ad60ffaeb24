package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/roamio/discovery-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func cronRouter(secret string) *gin.Engine {
	r := gin.New()
	r.POST("/refresh", CronSecretMiddleware(secret), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestCronSecretHeader(t *testing.T) {
	r := cronRouter("s3cret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.Header.Set("X-Cron-Secret", "s3cret")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCronSecretQueryParam(t *testing.T) {
	r := cronRouter("s3cret")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/refresh?secret=s3cret", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCronSecretRejectsMismatch(t *testing.T) {
	r := cronRouter("s3cret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.Header.Set("X-Cron-Secret", "wrong")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCronSecretDisabledWhenUnset(t *testing.T) {
	r := cronRouter("")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/refresh", nil))

	assert.Equal(t, http.StatusForbidden, w.Code, "unset secret must close the endpoint, not open it")
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		user := utils.GetUser(c)
		if user == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": user.UserID})
	})
	return r
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	r := authRouter("jwt-secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "jwt-secret", jwt.MapClaims{
		"user_id": float64(42),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestAuthMiddlewareRejectsBadSignature(t *testing.T) {
	r := authRouter("jwt-secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", jwt.MapClaims{"user_id": float64(42)}))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRequiresHeader(t *testing.T) {
	r := authRouter("jwt-secret")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestKeyedLimiterBurstThenDeny(t *testing.T) {
	limiter := NewKeyedLimiter(10, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("user-1"), "burst capacity should admit request %d", i)
	}
	assert.False(t, limiter.Allow("user-1"), "bucket drained")
	assert.True(t, limiter.Allow("user-2"), "keys get independent buckets")
}

func TestRateLimitPerIPReturns429(t *testing.T) {
	r := gin.New()
	r.GET("/d", RateLimitPerIP(NewKeyedLimiter(1, 1)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/d", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/d", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitPerUserRequiresAuth(t *testing.T) {
	r := gin.New()
	r.POST("/vote", RateLimitPerUser(NewKeyedLimiter(10, 5)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/vote", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
