// Package api assembles the gin engine: middleware chain, route table,
// media serving, and the not-found fallback.
package api

import (
	"github.com/getsentry/sentry-go"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/config"
	"github.com/d60-Lab/microblog/internal/api/handler"
	"github.com/d60-Lab/microblog/internal/middleware"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/logger"
)

const loginPath = "/auth/login/"

// NewRouter builds the engine. users is needed by the session middleware
// to resolve cookies to accounts.
func NewRouter(cfg *config.Config, h *handler.Handler, users repository.UserRepository, mediaDir string) *gin.Engine {
	if cfg.Log.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware("microblog"))
	}
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("panic recovered", zap.Any("panic", err))
		sentry.CurrentHub().Recover(err)
		h.ServerError(c)
	}))
	r.Use(middleware.Session(users, cfg.Session.Secret))

	r.Static("/media", mediaDir)

	login := middleware.LoginRequired(loginPath)
	writeLimit := middleware.RateLimit(cfg.Limits.WriteRPS, cfg.Limits.WriteBurst)

	r.GET("/", h.Index)
	r.GET("/group/:slug/", h.GroupFeed)
	r.GET("/profile/:username/", h.Profile)
	r.GET("/profile/:username/follow/", login, h.Follow)
	r.GET("/profile/:username/unfollow/", login, h.Unfollow)
	r.GET("/posts/:id/", h.PostDetail)
	r.GET("/create/", login, h.PostCreateForm)
	r.POST("/create/", login, writeLimit, h.PostCreate)
	r.GET("/posts/:id/edit/", login, h.PostEditForm)
	r.POST("/posts/:id/edit/", login, writeLimit, h.PostEdit)
	r.POST("/posts/:id/comment/", login, writeLimit, h.AddComment)
	r.GET("/follow/", login, h.FollowFeed)
	r.GET("/about/author/", h.AboutAuthor)
	r.GET("/about/tech/", h.AboutTech)

	auth := r.Group("/auth")
	{
		auth.GET("/login/", h.LoginPage)
		auth.POST("/login/", h.Login)
		auth.GET("/signup/", h.SignupPage)
		auth.POST("/signup/", h.Signup)
		auth.GET("/logout/", h.Logout)
	}

	r.NoRoute(h.NotFound)
	return r
}
