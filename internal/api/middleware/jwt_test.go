package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthProbe(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuth())
	r.GET("/whoami", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		userName, _ := c.Get("user_name")
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "user_name": userName})
	})
	return r
}

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func probe(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := newAuthProbe(t)

	tok := signToken(t, testSecret, authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name: "Dana",
	})

	rec := probe(r, "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"user-1"`)
	assert.Contains(t, rec.Body.String(), `"user_name":"Dana"`)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := newAuthProbe(t)

	assert.Equal(t, http.StatusUnauthorized, probe(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer ").Code)
}

func TestJWTAuthBadSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := newAuthProbe(t)

	tok := signToken(t, "other-secret", jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+tok).Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := newAuthProbe(t)

	tok := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+tok).Code)
}

func TestJWTAuthMissingSubject(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := newAuthProbe(t)

	tok := signToken(t, testSecret, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+tok).Code)
}

func TestJWTAuthIssuerCheck(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_ISSUER", "voxprep")
	r := newAuthProbe(t)

	good := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "voxprep",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	assert.Equal(t, http.StatusOK, probe(r, "Bearer "+good).Code)

	bad := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+bad).Code)
}
