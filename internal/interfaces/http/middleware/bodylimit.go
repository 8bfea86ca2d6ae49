package middleware

import (
	"net/http"

	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects requests whose declared body is larger than maxBytes and
// caps the readable body for requests that do not declare a length
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			AbortBodyTooLarge(c)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// AbortBodyTooLarge answers 413 with the sale error envelope
func AbortBodyTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
		dto.NewErrorResponseFromCode(pos.ErrCodeInvalidPayload, "Request body exceeds maximum allowed size"))
}
