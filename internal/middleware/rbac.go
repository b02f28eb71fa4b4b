package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/free-learning-api/internal/models"
	appErrors "github.com/noah-isme/free-learning-api/pkg/errors"
	"github.com/noah-isme/free-learning-api/pkg/response"
)

// RequireRoles restricts a route to the given roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireManageScope restricts a route to actors holding any unit-management
// scope at all. Whether a particular unit is inside that scope is decided
// per-query by the repositories.
func RequireManageScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorValue, exists := c.Get(ContextActorKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		actor := actorValue.(models.Actor)
		if actor.ManageScope == models.ManageScopeNone {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "no unit management rights"))
			c.Abort()
			return
		}
		c.Next()
	}
}
