package middleware

import (
	"osf/internal/apperr"

	"github.com/gin-gonic/gin"
)

// AbortWithError writes err as the JSON error body and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	e := apperr.From(err)
	body := gin.H{"code": e.Code, "detail": e.Detail}
	if len(e.Meta) > 0 {
		body["meta"] = e.Meta
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.Status, body)
}
