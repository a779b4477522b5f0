package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetLimitParam reads ?limit=, returning 0 when it is missing or not a
// positive number so callers fall back to their own default.
func GetLimitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 1 {
		return 0
	}
	return limit
}
