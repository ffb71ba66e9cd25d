package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-service/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T) *auth.Keys {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	keys, err := auth.NewKeys(pubPEM, privPEM)
	require.NoError(t, err)
	return keys
}

func mintToken(t *testing.T, keys *auth.Keys, subject string, roles ...string) string {
	t.Helper()
	token, err := keys.GenerateToken(auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: roles,
	})
	require.NoError(t, err)
	return token
}

func testRouter(t *testing.T, keys *auth.Keys) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m, err := NewMid(keys)
	require.NoError(t, err)

	r := gin.New()
	echoSubject := func(c *gin.Context) {
		claims := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	}
	authed := r.Group("")
	authed.Use(m.Authentication())
	authed.GET("/mine", m.Authorize(echoSubject, auth.RoleUser))
	authed.GET("/admin", m.Authorize(echoSubject, auth.RoleAdmin))
	return r
}

func TestAuthenticationAndAuthorize(t *testing.T) {
	keys := testKeys(t)
	r := testRouter(t, keys)
	userToken := mintToken(t, keys, "user-1", auth.RoleUser)
	adminToken := mintToken(t, keys, "admin-1", auth.RoleAdmin)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"user token on user route", "/mine", "Bearer " + userToken, http.StatusOK},
		{"admin token on admin route", "/admin", "Bearer " + adminToken, http.StatusOK},
		{"user token on admin route", "/admin", "Bearer " + userToken, http.StatusForbidden},
		{"missing header", "/mine", "", http.StatusUnauthorized},
		{"malformed header", "/mine", "Token " + userToken, http.StatusUnauthorized},
		{"garbage token", "/mine", "Bearer not.a.jwt", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	keys := testKeys(t)
	r := testRouter(t, keys)

	expired, err := keys.GenerateToken(auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Roles: []string{auth.RoleUser},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/mine", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenFromForeignKeyRejected(t *testing.T) {
	keys := testKeys(t)
	otherKeys := testKeys(t)
	r := testRouter(t, keys)

	// Signed by a key the service does not trust.
	foreign := mintToken(t, otherKeys, "user-1", auth.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/mine", nil)
	req.Header.Set("Authorization", "Bearer "+foreign)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
