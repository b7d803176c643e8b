package api

import (
	"errors"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/cache"
	"github.com/blogicum/blogicum/internal/models"
)

const (
	viewerKey = "viewer"
	claimsKey = "claims"

	loginPath = "/auth/login/"

	requestIDHeader = "X-Request-ID"
)

// RequestLogger tags every request with an id and logs it once served
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Next()

		logger.Info("Request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// Recovery turns panics into 500 responses and logs them with a stack trace
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered",
					zap.Any("error", r),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, NewError(http.StatusInternalServerError, "internal server error"))
			}
		}()
		c.Next()
	}
}

// OptionalAuth resolves the viewer from a Bearer token or the auth cookie.
// Invalid, revoked or orphaned tokens leave the request anonymous.
func OptionalAuth(tokens *auth.TokenManager, users UserStore, revoker Revoker, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			tokenStr, _ = c.Cookie(cookieName)
		}
		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		revoked, err := revoker.IsRevoked(ctx, claims.ID)
		if err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			logger.Warn("Failed to check token revocation", zap.Error(err))
		}
		if revoked {
			c.Next()
			return
		}

		userID, _ := claims.UserID()
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			sendError(c, logger, err)
			return
		}
		if user != nil {
			c.Set(viewerKey, user)
			c.Set(claimsKey, claims)
		}
		c.Next()
	}
}

// RequireAuth redirects anonymous callers to the login page, remembering
// where they were going
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewer(c) == nil {
			c.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// viewer returns the authenticated user or nil
func viewer(c *gin.Context) *models.User {
	if v, ok := c.Get(viewerKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func tokenClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
