package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/cache"
	"github.com/blogicum/blogicum/internal/models"
)

// register creates an account and sends the user to the login page
func (r *Router) register(c *gin.Context) (interface{}, error) {
	form := &RegistrationForm{}
	if err := bindForm(c, form); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	taken, err := r.users.UsernameTaken(ctx, form.Username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ValidationError(map[string]string{"username": "A user with that username already exists."}, form)
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return nil, InternalError(err)
	}

	user := &models.User{
		Username:     form.Username,
		Email:        form.Email,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		PasswordHash: hash,
	}
	if err := r.users.Create(ctx, user); err != nil {
		return nil, err
	}

	r.logger.Info("User registered", zap.String("username", user.Username))
	return Redirect(loginPath), nil
}

// login checks credentials and issues a token, both in the body and as a cookie
func (r *Router) login(c *gin.Context) (interface{}, error) {
	ctx := c.Request.Context()
	if err := r.throttleLogin(c); err != nil {
		r.metrics.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "throttled")))
		return nil, err
	}

	form := &LoginForm{}
	if err := bindForm(c, form); err != nil {
		return nil, err
	}

	user, err := r.users.GetByUsername(ctx, form.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, form.Password) {
		r.metrics.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "rejected")))
		return nil, ValidationError(map[string]string{
			"__all__": "Please enter a correct username and password.",
		}, form)
	}

	token, claims, err := r.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, InternalError(err)
	}

	r.resetLoginThrottle(c)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(r.cfg.Auth.CookieName, token, int(r.tokens.TTL().Seconds()), "/", "", false, true)

	r.metrics.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	return gin.H{
		"token":      token,
		"expires_at": claims.ExpiresAt.Time,
		"user":       user,
	}, nil
}

// throttleLogin allows a fixed number of attempts per client IP and window.
// Without redis logins are not throttled.
func (r *Router) throttleLogin(c *gin.Context) error {
	count, err := r.limiter.Incr(c.Request.Context(), loginKey(c), r.cfg.Auth.LoginWindow)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheDisabled) {
			r.logger.Warn("Login throttling unavailable", zap.Error(err))
		}
		return nil
	}
	if count > int64(r.cfg.Auth.LoginAttempts) {
		return NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
	}
	return nil
}

// resetLoginThrottle forgets the failed attempts of a client that logged in
func (r *Router) resetLoginThrottle(c *gin.Context) {
	err := r.limiter.Delete(c.Request.Context(), loginKey(c))
	if err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		r.logger.Warn("Failed to reset login throttle", zap.Error(err))
	}
}

func loginKey(c *gin.Context) string {
	return "login:" + cache.HashKey(c.ClientIP())
}

// logout revokes the current token and clears the cookie
func (r *Router) logout(c *gin.Context) (interface{}, error) {
	if claims := tokenClaims(c); claims != nil {
		err := r.revoker.Revoke(c.Request.Context(), claims.ID, claims.TTL(time.Now()))
		if err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			r.logger.Warn("Failed to revoke token", zap.Error(err))
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(r.cfg.Auth.CookieName, "", -1, "/", "", false, true)
	return Redirect("/"), nil
}
