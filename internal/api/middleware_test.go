package api

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JorgeSaicoski/timekeeper/internal/config"
	"github.com/JorgeSaicoski/timekeeper/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newRouter(cfg config.AuthConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	router.GET("/whoami", handlers...)
	return router
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func claimsFor(sub, role string) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func do(router *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_GatewayHeaders(t *testing.T) {
	router := newRouter(config.AuthConfig{TrustGatewayHeaders: true})

	w := do(router, map[string]string{"X-User-ID": "42"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"id": "42", "role": "user"}, decode(t, w))

	w = do(router, map[string]string{"X-User-ID": "1", "X-User-Role": "Admin"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["role"])

	w = do(router, map[string]string{"X-User-ID": "1", "X-User-Role": "root"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_GatewayHeadersIgnoredWhenUntrusted(t *testing.T) {
	router := newRouter(config.AuthConfig{JWTSecret: secret})

	w := do(router, map[string]string{"X-User-ID": "42"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	router := newRouter(config.AuthConfig{JWTSecret: secret})

	token := sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor("42", "admin"))
	w := do(router, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"id": "42", "role": "admin"}, decode(t, w))
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	router := newRouter(config.AuthConfig{JWTSecret: secret})

	expired := claimsFor("42", "user")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer not-a-token"},
		{"wrong key", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor("42", "user"))},
		{"wrong method", "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(secret), claimsFor("42", "user"))},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), expired)},
		{"no subject", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor("", "user"))},
		{"unknown role", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor("42", "owner"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, map[string]string{"Authorization": tt.header})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestAuthMiddleware_TokenWithoutSecret(t *testing.T) {
	router := newRouter(config.AuthConfig{})

	token := sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor("42", "user"))
	w := do(router, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	router := newRouter(config.AuthConfig{TrustGatewayHeaders: true}, RequireRole(db.RoleAdmin))

	w := do(router, map[string]string{"X-User-ID": "42", "X-User-Role": "user"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, map[string]string{"X-User-ID": "1", "X-User-Role": "admin"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_DefaultConfigRejectsSpoofedHeaders(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	cfg, err := config.Load()
	require.NoError(t, err)

	router := newRouter(cfg.Auth, RequireRole(db.RoleAdmin))

	w := do(router, map[string]string{"X-User-ID": "anyone", "X-User-Role": "admin"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor("1", "admin"))
	w = do(router, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
}

func newRealmKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, base64.StdEncoding.EncodeToString(der)
}

func realmToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_KeycloakRealmToken(t *testing.T) {
	key, publicKey := newRealmKey(t)
	router := newRouter(config.AuthConfig{KeycloakPublicKey: publicKey, JWTSecret: secret})
	exp := time.Now().Add(time.Hour).Unix()

	token := realmToken(t, key, jwt.MapClaims{
		"sub":          "kc-7",
		"exp":          exp,
		"realm_access": map[string]any{"roles": []string{"offline_access", "admin"}},
	})
	w := do(router, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"id": "kc-7", "role": "admin"}, decode(t, w))

	token = realmToken(t, key, jwt.MapClaims{"sub": "kc-8", "exp": exp})
	w = do(router, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"id": "kc-8", "role": "user"}, decode(t, w))
}

func TestAuthMiddleware_KeycloakRejectsForeignTokens(t *testing.T) {
	_, publicKey := newRealmKey(t)
	other, _ := newRealmKey(t)
	router := newRouter(config.AuthConfig{KeycloakPublicKey: publicKey, JWTSecret: secret})
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"other realm key", "Bearer " + realmToken(t, other, jwt.MapClaims{"sub": "kc-7", "exp": exp})},
		{"hs256 once keycloak is on", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), claimsFor("42", "admin"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, map[string]string{"Authorization": tt.header})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}
