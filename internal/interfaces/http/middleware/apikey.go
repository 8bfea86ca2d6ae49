package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the terminal shared secret
const APIKeyHeader = "x-pos-api-key"

// APIKey rejects requests whose x-pos-api-key header does not match secret.
// An empty secret disables the check.
func APIKey(secret string) gin.HandlerFunc {
	expected := []byte(secret)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}
		provided := []byte(c.GetHeader(APIKeyHeader))
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(pos.NewUnauthorizedError()))
			return
		}
		c.Next()
	}
}
