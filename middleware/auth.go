package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ecohub-backend/models"
	"ecohub-backend/rbac"
	"ecohub-backend/utils"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "user_role"
	ctxClaims = "claims"
)

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header
// and stores the caller's claims on the context.
func AuthMiddleware(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, utils.ErrTokenExpired) {
				msg = "Token has expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, models.RoleName(claims.UserTypeID))
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// RequirePerm lets the request through only if the caller's role may
// perform act on obj.
func RequirePerm(en *rbac.Enforcer, obj, act string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !en.Enforce(GetRole(c), obj, act) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated caller's id.
func GetUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

func GetClaims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
