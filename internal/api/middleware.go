package api

import (
	"errors"
	"strings"

	keycloakauth "github.com/JorgeSaicoski/keycloak-auth"
	"github.com/JorgeSaicoski/microservice-commons/responses"
	"github.com/JorgeSaicoski/timekeeper/internal/config"
	"github.com/JorgeSaicoski/timekeeper/internal/db"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// Principal is the authenticated caller. It owns the timers it starts.
type Principal struct {
	ID   string
	Role db.OwnerRole
}

func (p Principal) Owner() db.Owner {
	return db.Owner{ID: p.ID, Role: p.Role}
}

func (p Principal) IsAdmin() bool {
	return p.Role == db.RoleAdmin
}

// Claims is the HS256 bearer token payload: sub carries the account id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware resolves the Principal of every request.
//
// When TrustGatewayHeaders is set, an upstream gateway that already
// authenticated the user may send X-User-ID and X-User-Role. Otherwise a
// bearer token is required: RS256 from the Keycloak realm when one is
// configured, HS256 signed with JWTSecret if not.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	tokenAuth := hmacAuth(cfg.JWTSecret)
	if cfg.KeycloakEnabled() {
		tokenAuth = keycloakAuth(cfg)
	}

	return func(c *gin.Context) {
		if cfg.TrustGatewayHeaders {
			if userID := strings.TrimSpace(c.GetHeader("X-User-ID")); userID != "" {
				role, ok := parseRole(c.GetHeader("X-User-Role"))
				if !ok {
					unauthorized(c, "invalid user role")
					return
				}
				c.Set(principalKey, Principal{ID: userID, Role: role})
				c.Next()
				return
			}
		}

		tokenAuth(c)
	}
}

func unauthorized(c *gin.Context, message string) {
	responses.Unauthorized(c, message)
	c.Abort()
}

func hmacAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := principalFromToken(c.GetHeader("Authorization"), secret)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// keycloakAuth verifies realm tokens with keycloak-auth. The principal is
// built from the verified claims and stored under principalKey before the
// rest of the chain runs.
func keycloakAuth(cfg config.AuthConfig) gin.HandlerFunc {
	kc := keycloakauth.DefaultConfig()
	kc.PublicKeyBase64 = cfg.KeycloakPublicKey
	kc.KeycloakURL = cfg.KeycloakURL
	kc.Realm = cfg.KeycloakRealm
	kc.RequiredClaims = []string{"sub"}

	return keycloakauth.AuthMiddleware(kc, keycloakauth.AuthMiddlewareOptions{
		ClaimsExtractor: func(claims jwt.MapClaims) map[string]interface{} {
			sub, _ := claims["sub"].(string)
			if strings.TrimSpace(sub) == "" {
				return map[string]interface{}{}
			}
			return map[string]interface{}{
				"principal": Principal{ID: sub, Role: realmRole(claims)},
			}
		},
		ErrorHandler: func(c *gin.Context, err error) {
			unauthorized(c, err.Error())
		},
		ContextKeys: map[string]string{"principal": principalKey},
	})
}

// realmRole maps Keycloak realm roles onto an OwnerRole.
func realmRole(claims jwt.MapClaims) db.OwnerRole {
	access, _ := claims["realm_access"].(map[string]interface{})
	roles, _ := access["roles"].([]interface{})
	for _, r := range roles {
		if name, ok := r.(string); ok && db.OwnerRole(name) == db.RoleAdmin {
			return db.RoleAdmin
		}
	}
	return db.RoleUser
}

func principalFromToken(header, secret string) (Principal, error) {
	raw, found := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !found || raw == "" {
		return Principal{}, errors.New("missing bearer token")
	}
	if secret == "" {
		return Principal{}, errors.New("token authentication is not configured")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, errors.New("invalid token")
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return Principal{}, errors.New("token has no subject")
	}
	role, ok := parseRole(claims.Role)
	if !ok {
		return Principal{}, errors.New("invalid user role")
	}
	return Principal{ID: claims.Subject, Role: role}, nil
}

// parseRole maps a role claim to an OwnerRole. Empty means user.
func parseRole(value string) (db.OwnerRole, bool) {
	role := db.OwnerRole(strings.ToLower(strings.TrimSpace(value)))
	if role == "" {
		return db.RoleUser, true
	}
	return role, role.Valid()
}

// GetPrincipal returns the caller resolved by AuthMiddleware.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}

// RequireRole rejects callers whose role is not role.
func RequireRole(role db.OwnerRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			unauthorized(c, "User not authenticated")
			return
		}
		if principal.Role != role {
			responses.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
