package middleware

import (
	apiError "storefront-builder/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		if len(c.Errors) == 0 {
			return
		}

		apiErr := apiError.FromDomain(c.Errors.Last().Err)

		entry := log.WithField("path", c.FullPath()).WithField("status", apiErr.Status)
		if apiErr.Status >= 500 {
			entry.WithError(apiErr.Internal).Error("request failed")
		} else {
			entry.WithError(apiErr.Internal).Info(apiErr.Message)
		}

		c.AbortWithStatusJSON(apiErr.Status, apiErr)
	}
}
