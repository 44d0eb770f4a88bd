package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Actor roles carried in the token.
const (
	RoleRider    = "rider"
	RoleDriver   = "driver"
	RoleOperator = "operator"
)

const actorContextKey = "actor"

// ActorContext identifies the authenticated caller.
type ActorContext struct {
	ID   string
	Role string
}

// Claims is the JWT payload: the subject is the actor ID.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the HS256 bearer token and stores the actor in the gin
// context for handlers to read via Actor.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		})
		if err != nil || !parsed.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(actorContextKey, ActorContext{ID: claims.Subject, Role: claims.Role})
		c.Next()
	}
}

// Actor returns the authenticated actor stored by Auth.
func Actor(c *gin.Context) (ActorContext, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return ActorContext{}, false
	}
	actor, ok := v.(ActorContext)
	return actor, ok
}

// SignToken issues a token for the given actor. Used by tests and by
// operator tooling; the service itself never mints rider/driver tokens.
func SignToken(secret, actorID, role string) (string, error) {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: actorID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
