package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/blogicum/blogicum/pkg/telemetry"
)

// Redirect is a handler result answered with 302 Found
type Redirect string

// HandlerFunc handles one route. The result is written as JSON unless it is
// a Redirect; a non-nil error is mapped through sendError.
type HandlerFunc func(c *gin.Context) (interface{}, error)

// handle adapts fn to gin, wrapping it in a span named name
func handle(logger *zap.Logger, name string, fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := telemetry.StartSpan(c.Request.Context(), name)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		result, err := fn(c)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			sendError(c, logger, err)
			return
		}

		if location, ok := result.(Redirect); ok {
			span.SetAttributes(attribute.String("http.redirect", string(location)))
			c.Redirect(http.StatusFound, string(location))
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
