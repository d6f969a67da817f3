package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/AssetDocs/legacylocker/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// InternalSecretMiddleware guards scheduler-only endpoints. Callers must
// present the shared secret in x-internal-secret; everything else is
// rejected before any handler runs.
func InternalSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("x-internal-secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}
		c.Next()
	}
}
