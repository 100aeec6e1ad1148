package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/reddit-companion/backend/internal/database"
	"github.com/emilythestrangee/reddit-companion/backend/internal/handlers"
	"github.com/emilythestrangee/reddit-companion/backend/internal/metrics"
	"github.com/emilythestrangee/reddit-companion/backend/internal/middleware"
)

type Server struct {
	db        database.Service
	handler   *handlers.Handler
	jwtSecret []byte
	log       *logrus.Logger
}

func New(db database.Service, handler *handlers.Handler, jwtSecret []byte, log *logrus.Logger) *Server {
	return &Server{db: db, handler: handler, jwtSecret: jwtSecret, log: log}
}

// HTTPServer wraps the router in an http.Server listening on port.
func (s *Server) HTTPServer(port string) *http.Server {
	s.log.Infof("🚀 Server starting on port %s", port)
	return &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(s.log.WriterLevel(logrus.InfoLevel)), gin.Recovery(), metrics.Middleware())

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		health := s.db.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, health)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.jwtSecret))
		{
			protected.GET("/me", s.handler.Auth.GetMe)
			protected.PUT("/me", s.handler.Auth.UpdateSettings)

			protected.GET("/posts/:id", s.handler.Post.GetPost)
			protected.POST("/posts/:id/resolve", s.handler.Post.ResolveMedia)
			protected.GET("/posts/:id/comments", s.handler.Comment.GetComments)
			protected.POST("/posts/:id/vote", s.handler.Post.VotePost)
			protected.POST("/resolve", s.handler.Media.Resolve)

			protected.GET("/r/:name", s.handler.Subreddit.GetSubreddit)
			protected.GET("/r/:name/posts", s.handler.Subreddit.GetPosts)
			protected.GET("/r/:name/rules", s.handler.Subreddit.GetRules)
			protected.GET("/r/:name/flairs", s.handler.Subreddit.GetFlairs)
			protected.GET("/users/:name", s.handler.User.GetUserProfile)

			protected.GET("/inbox", s.handler.Inbox.GetInbox)
			protected.POST("/inbox/poll", s.handler.Inbox.Poll)
			protected.POST("/inbox/read", s.handler.Inbox.MarkRead)
			protected.GET("/notifications", s.handler.Inbox.GetNotifications)

			protected.GET("/subscriptions", s.handler.Subscription.GetSubscriptions)
			protected.POST("/subscriptions/sync", s.handler.Subscription.Sync)
		}
	}

	return r
}
