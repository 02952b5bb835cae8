package handlers

import (
	"SurgiFlow/apperrors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest("Invalid %s", name)
	}
	return uint(id), nil
}

// bindJSON decodes the request body, reporting malformed input as BadRequest.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.BadRequest("Invalid request body: %v", err)
	}
	return nil
}
