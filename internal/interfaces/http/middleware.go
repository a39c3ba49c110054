package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/staffbridge/hr-payroll/internal/application/service"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

const actorContextKey = "auth.actor"

// authMiddleware verifies the bearer token and stores the resolved actor
// on the request context
func authMiddleware(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		actor, err := auth.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired token",
			})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// requireRoles rejects requests whose actor holds none of the given roles
func requireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		actor := currentActor(c)
		if !allowed[actor.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "insufficient role",
			})
			return
		}
		c.Next()
	}
}

// currentActor returns the actor set by authMiddleware. Routes registered
// behind requireAuth always have one.
func currentActor(c *gin.Context) workflow.Actor {
	v, _ := c.Get(actorContextKey)
	actor, _ := v.(workflow.Actor)
	return actor
}

// bearerToken extracts the raw token from the Authorization header
func bearerToken(c *gin.Context) string {
	token, _ := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	return token
}
