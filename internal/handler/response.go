package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/pkg/logger"
)

const contentTypeKey = "content_type"

// WithContentType binds a registry type tag to every route of a group
func WithContentType(tag string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contentTypeKey, tag)
		c.Next()
	}
}

func contentType(c *gin.Context) string {
	return c.GetString(contentTypeKey)
}

// fail writes err as a response; internal errors are logged and reported generically
func fail(c *gin.Context, err error) {
	if common.StatusFor(err) == http.StatusInternalServerError {
		log := logger.WithRequestID(c.GetString("request_id"))
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	common.HandleError(c, err)
}

// bindError turns a gin binding failure into a validation error
func bindError(err error) error {
	converted := common.FromValidator(err)
	var verr *common.ValidationError
	if errors.As(converted, &verr) {
		return verr
	}
	return common.NewValidationError("request", "malformed request: "+err.Error())
}

func invalidID(field string) error {
	return common.NewValidationError(field, "must be a positive integer")
}
