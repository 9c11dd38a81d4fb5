package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/token"
)

// principalKey is the gin context key under which the authenticated
// principal is stored. Unexported so handlers go through PrincipalFromContext.
const principalKey = "storefront/principal"

const bearerPrefix = "Bearer "

// Authenticate guards protected routes by requiring a valid bearer token.
// A missing or non-Bearer Authorization header aborts with 401; a token that
// fails verification aborts with 403. The response body deliberately does not
// distinguish an expired token from a bad signature. On success the verified
// principal is attached to the request context and the chain continues.
func Authenticate(tokens *token.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) || header == bearerPrefix {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Access token required",
			})
			return
		}

		principal, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			logger.Debug("Token verification failed", zap.Error(err))
			metrics.TokenVerificationsTotal.WithLabelValues("rejected").Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Invalid token",
			})
			return
		}

		metrics.TokenVerificationsTotal.WithLabelValues("accepted").Inc()
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole restricts a route to principals holding one of the given roles.
// It must run after Authenticate; if no principal is attached the request is
// rejected rather than let through.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// PrincipalFromContext returns the principal attached by Authenticate.
func PrincipalFromContext(c *gin.Context) (models.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := v.(models.Principal)
	return principal, ok
}
