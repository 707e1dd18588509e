package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-loans-go/service/auth"
)

// Authenticator exchanges credentials and tokens.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Authenticate(ctx context.Context, accessToken string) (auth.Claims, error)
}

// Pinger reports whether the primary database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies is what NewRouter wires into the routes.
type Dependencies struct {
	Handlers    Handlers
	Auth        Authenticator
	Health      Pinger
	Logger      *slog.Logger
	CORSOrigins []string
	Clock       func() time.Time
}

type server struct {
	handlers Handlers
	auth     Authenticator
	health   Pinger
	logger   *slog.Logger
	clock    func() time.Time
}

// NewRouter builds the gin engine serving the REST API under /api and the health check.
// Registration takes an optional bearer token; every other route except login, refresh and
// health requires one.
func NewRouter(deps Dependencies) *gin.Engine {
	s := &server{
		handlers: deps.Handlers,
		auth:     deps.Auth,
		health:   deps.Health,
		logger:   deps.Logger,
		clock:    deps.Clock,
	}

	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	if s.clock == nil {
		s.clock = time.Now
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())
	r.Use(cors.New(corsConfig(deps.CORSOrigins)))

	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	{
		api.POST("/auth/login/", s.login)
		api.POST("/auth/refresh/", s.refresh)

		// Registration is open, so the token is optional here.
		api.POST("/users/", s.authenticate(false), s.createUser)
	}

	protected := api.Group("", s.authenticate(true))
	{
		protected.GET("/books/", s.listBooks)
		protected.POST("/books/", s.createBook)
		protected.GET("/books/:id/", s.getBook)
		protected.PUT("/books/:id/", s.updateBook)
		protected.DELETE("/books/:id/", s.deleteBook)

		protected.GET("/users/", s.listUsers)
		protected.GET("/users/me/", s.me)
		protected.GET("/users/:id/", s.getUser)
		protected.PUT("/users/:id/", s.updateUser)
		protected.DELETE("/users/:id/", s.deleteUser)

		protected.GET("/loans/", s.listLoans)
		protected.POST("/loans/", s.createLoan)
		protected.GET("/loans/:id/", s.getLoan)
		protected.POST("/loans/:id/return/", s.returnLoan)
	}

	r.NoRoute(func(c *gin.Context) {
		abortWithDetail(c, http.StatusNotFound, detailNotFound)
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}

	return config
}

func (s *server) healthz(c *gin.Context) {
	if s.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if err := s.health.Ping(c.Request.Context()); err != nil {
		s.logger.WarnContext(c.Request.Context(), "health check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
