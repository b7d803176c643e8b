package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/cache"
	"github.com/blogicum/blogicum/internal/db"
	"github.com/blogicum/blogicum/internal/storage"
	"github.com/blogicum/blogicum/pkg/config"
	"github.com/blogicum/blogicum/pkg/logging"
	"github.com/blogicum/blogicum/pkg/telemetry"
)

type metrics struct {
	postsCreated    metric.Int64Counter
	postsDeleted    metric.Int64Counter
	commentsCreated metric.Int64Counter
	logins          metric.Int64Counter
}

func newMetrics() metrics {
	return metrics{
		postsCreated:    telemetry.Counter("blog_posts_created_total", "Posts created"),
		postsDeleted:    telemetry.Counter("blog_posts_deleted_total", "Posts deleted"),
		commentsCreated: telemetry.Counter("blog_comments_created_total", "Comments created"),
		logins:          telemetry.Counter("blog_logins_total", "Login attempts by outcome"),
	}
}

// Router sets up API routes
type Router struct {
	cfg    *config.Config
	db     *db.DB
	cache  *cache.Cache
	media  storage.Storage
	tokens *auth.TokenManager

	posts      PostStore
	comments   CommentStore
	categories CategoryStore
	locations  LocationStore
	users      UserStore
	limiter    Limiter
	revoker    Revoker

	metrics metrics
	logger  *zap.Logger
}

// NewRouter creates a new API router. redisCache may be nil.
func NewRouter(cfg *config.Config, database *db.DB, redisCache *cache.Cache, media storage.Storage) *Router {
	registerValidators()

	repo := db.NewRepository(database.DB)
	return &Router{
		cfg:        cfg,
		db:         database,
		cache:      redisCache,
		media:      media,
		tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		posts:      db.NewPostRepository(repo),
		comments:   db.NewCommentRepository(repo),
		categories: db.NewCategoryRepository(repo),
		locations:  db.NewLocationRepository(repo),
		users:      db.NewUserRepository(repo),
		limiter:    redisCache,
		revoker:    redisCache,
		metrics:    newMetrics(),
		logger:     logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(Recovery(r.logger), RequestLogger(r.logger))
	if len(r.cfg.Server.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = r.cfg.Server.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AddAllowHeaders("Authorization")
		engine.Use(cors.New(corsConfig))
	}
	engine.Use(OptionalAuth(r.tokens, r.users, r.revoker, r.cfg.Auth.CookieName, r.logger))

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if local, ok := r.media.(*storage.LocalStorage); ok && strings.HasPrefix(r.cfg.Storage.LocalBaseURL, "/") {
		engine.Static(strings.TrimSuffix(r.cfg.Storage.LocalBaseURL, "/"), local.Root())
	}

	getPost := []string{http.MethodGet, http.MethodPost}

	// Public pages
	engine.GET("/", handle(r.logger, "blog.index", r.index))
	engine.GET("/posts/:id/", handle(r.logger, "blog.post_detail", r.postDetail))
	engine.GET("/category/:slug/", handle(r.logger, "blog.category_posts", r.categoryPosts))
	engine.GET("/profile/:username/", handle(r.logger, "blog.profile", r.profile))

	// Accounts
	engine.POST("/auth/registration/", handle(r.logger, "auth.register", r.register))
	engine.POST("/auth/login/", handle(r.logger, "auth.login", r.login))
	engine.POST("/auth/logout/", handle(r.logger, "auth.logout", r.logout))

	// Owner pages
	authed := engine.Group("/")
	authed.Use(RequireAuth())
	authed.Match(getPost, "/posts/create/", handle(r.logger, "blog.create_post", r.createPost))
	authed.Match(getPost, "/posts/:id/edit/", handle(r.logger, "blog.edit_post", r.editPost))
	authed.Match(getPost, "/posts/:id/delete/", handle(r.logger, "blog.delete_post", r.deletePost))
	authed.POST("/posts/:id/comment/", handle(r.logger, "blog.add_comment", r.addComment))
	authed.Match(getPost, "/posts/:id/comment/:cid/edit/", handle(r.logger, "blog.edit_comment", r.editComment))
	authed.Match(getPost, "/posts/:id/comment/:cid/delete/", handle(r.logger, "blog.delete_comment", r.deleteComment))
	authed.Match(getPost, "/profile/edit/", handle(r.logger, "blog.edit_profile", r.editProfile))
}

// healthHandler reports database and redis health
func (r *Router) healthHandler(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	checks := gin.H{"database": "ok", "redis": "ok"}

	if err := r.db.Health(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := r.cache.Health(ctx); err != nil {
		if errors.Is(err, cache.ErrCacheDisabled) {
			checks["redis"] = "disabled"
		} else {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, gin.H{
		"status":  http.StatusText(status),
		"service": r.cfg.Telemetry.ServiceName,
		"checks":  checks,
	})
}
