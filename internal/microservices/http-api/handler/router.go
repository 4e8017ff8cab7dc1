package handler

import (
	"context"
	"net/http"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Services bundles everything the API routes dispatch into.
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Categories service.CatalogService
	Genres     service.CatalogService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService
}

type RouterOptions struct {
	Logger *logrus.Logger
	// Metrics is optional; nil disables /metrics and request instrumentation.
	Metrics          *metrics.Metrics
	SignupRatePerMin int
	// Health reports backing store reachability for /healthz.
	Health func(ctx context.Context) error
}

// NewRouter wires middleware and every /api/v1 route.
func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", opts.Metrics.Handler())
	}
	r.Use(middleware.RequestLogger(opts.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users)
	categoryHandler := NewCatalogHandler(svc.Categories)
	genreHandler := NewCatalogHandler(svc.Genres)
	titleHandler := NewTitleHandler(svc.Titles)
	reviewHandler := NewReviewHandler(svc.Reviews)
	commentHandler := NewCommentHandler(svc.Comments)

	v1 := r.Group("/api/v1")

	// the handshake is anonymous by nature, so a stale bearer header must not block it
	rate := opts.SignupRatePerMin
	if rate < 1 {
		rate = 5
	}
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(middleware.NewClientLimiter(rate)))
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/token", authHandler.Token)
	}

	api := v1.Group("")
	api.Use(middleware.Identify(svc.Auth))

	users := api.Group("/users")
	{
		users.GET("/me", userHandler.Me)
		users.PATCH("/me", userHandler.UpdateMe)
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/:username", userHandler.Get)
		users.PATCH("/:username", userHandler.Update)
		users.DELETE("/:username", userHandler.Delete)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", categoryHandler.List)
		categories.POST("", categoryHandler.Create)
		categories.PATCH("/:slug", categoryHandler.Update)
		categories.DELETE("/:slug", categoryHandler.Delete)
	}

	genres := api.Group("/genres")
	{
		genres.GET("", genreHandler.List)
		genres.POST("", genreHandler.Create)
		genres.PATCH("/:slug", genreHandler.Update)
		genres.DELETE("/:slug", genreHandler.Delete)
	}

	titles := api.Group("/titles")
	{
		titles.GET("", titleHandler.List)
		titles.POST("", titleHandler.Create)
		titles.GET("/:title_id", titleHandler.Get)
		titles.PATCH("/:title_id", titleHandler.Update)
		titles.DELETE("/:title_id", titleHandler.Delete)

		reviews := titles.Group("/:title_id/reviews")
		reviews.GET("", reviewHandler.List)
		reviews.POST("", reviewHandler.Create)
		reviews.GET("/:review_id", reviewHandler.Get)
		reviews.PATCH("/:review_id", reviewHandler.Update)
		reviews.DELETE("/:review_id", reviewHandler.Delete)

		comments := reviews.Group("/:review_id/comments")
		comments.GET("", commentHandler.List)
		comments.POST("", commentHandler.Create)
		comments.GET("/:comment_id", commentHandler.Get)
		comments.PATCH("/:comment_id", commentHandler.Update)
		comments.DELETE("/:comment_id", commentHandler.Delete)
	}

	return r
}
