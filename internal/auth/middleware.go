package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by Middleware for downstream handlers.
const (
	CtxUserID   = "userId"
	CtxRole     = "role"
	CtxDivision = "division"
)

// Middleware authenticates the bearer token and, when roles are given,
// enforces that the caller holds one of them.
func Middleware(secret string, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrTokenMissing.Error()})
			return
		}

		claims, err := ParseToken(strings.TrimPrefix(h, "Bearer "), secret)
		if err != nil {
			msg := "invalid or expired token"
			if errors.Is(err, ErrTokenExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxDivision, claims.Division)

		if len(requiredRoles) > 0 {
			allowed := false
			for _, r := range requiredRoles {
				if claims.Role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		c.Next()
	}
}

// Actor is the authenticated identity extracted from the request context.
type Actor struct {
	UserID   string
	Role     string
	Division string
}

// CurrentActor reads the identity Middleware stored on the context.
func CurrentActor(c *gin.Context) Actor {
	return Actor{
		UserID:   c.GetString(CtxUserID),
		Role:     c.GetString(CtxRole),
		Division: c.GetString(CtxDivision),
	}
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}
