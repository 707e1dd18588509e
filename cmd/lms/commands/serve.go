package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/service/auth"
	"github.com/AntonStoeckl/library-loans-go/service/httpapi"
	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/config"
)

const shutdownTimeout = 10 * time.Second

var (
	// Serve flags
	serveAddr    string
	serveMigrate bool
)

// serveCmd runs the REST API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Long: `Run the REST API until SIGINT or SIGTERM is received.

Examples:
  lms serve                        # Listen on LMS_HTTP_ADDR (default :8000)
  lms serve --addr :9000 --migrate # Apply the schema first, then listen on :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address ("+config.EnvHTTPAddr+")")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")

	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	if cfg.UsesDefaultSecret() {
		logger.Warn("using the development jwt secret, set " + config.EnvJWTSecret)
	}

	obs, err := newObservability(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("observability setup failed: %w", err)
	}
	defer func() {
		if shutdownErr := obs.shutdown(); shutdownErr != nil {
			logger.Error("observability shutdown failed", "error", shutdownErr.Error())
		}
	}()

	store, closeStore, err := config.OpenStore(ctx, cfg, obs.storeOptions...)
	if err != nil {
		return err
	}
	defer closeStore()

	if serveMigrate {
		if err = store.Migrate(ctx); err != nil {
			return err
		}
	}

	hasher := auth.NewBcryptHasher(0)

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return err
	}

	handlers, err := httpapi.NewCoreHandlers(store, hasher).Instrument(obs.instrumentation)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.Dependencies{
		Handlers:    handlers,
		Auth:        auth.NewAuthenticator(store, hasher, issuer),
		Health:      store,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Clock:       time.Now,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "version", Version)
		errChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err = <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("http server stopped")

	return nil
}
