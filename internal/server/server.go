// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codeberg.org/nodehub/nodehub/internal/config"
	"codeberg.org/nodehub/nodehub/internal/database"
	"codeberg.org/nodehub/nodehub/internal/handlers"
	"codeberg.org/nodehub/nodehub/internal/i18n"
	"codeberg.org/nodehub/nodehub/internal/repository"
	"codeberg.org/nodehub/nodehub/internal/services/approval"
	"codeberg.org/nodehub/nodehub/internal/services/auth"
	"codeberg.org/nodehub/nodehub/internal/services/duplicate"
	"codeberg.org/nodehub/nodehub/internal/services/ledger"
	"codeberg.org/nodehub/nodehub/internal/services/notify"
	"codeberg.org/nodehub/nodehub/internal/services/session"
	"codeberg.org/nodehub/nodehub/internal/sse"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// Services bundles the components behind the HTTP API.
type Services struct {
	Repo     *repository.Repository
	Auth     *auth.Service
	Sessions *session.Manager
	Ledger   *ledger.Service
	Engine   *approval.Engine
	Events   *sse.Hub
}

// NewServices wires the services on top of repo.
func NewServices(cfg *config.Config, repo *repository.Repository, notifier notify.Notifier) (*Services, error) {
	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")
	sessions, err := session.NewManager(repo, &cfg.Session, secure)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	return &Services{
		Repo:     repo,
		Auth:     auth.NewService(repo),
		Sessions: sessions,
		Ledger:   ledger.NewService(repo, duplicate.New(repo)),
		Engine:   approval.NewEngine(repo, notifier),
		Events:   sse.NewHub(),
	}, nil
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	SetupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	svc, err := NewServices(cfg, repository.New(db), notify.New(&cfg.SMTP))
	if err != nil {
		return err
	}

	// Expired sessions are purged in the background until shutdown.
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go session.NewJanitor(svc.Sessions, cfg.Session.PurgeInterval).Start(janitorCtx)

	return startWithGracefulShutdown(NewEcho(cfg, svc), cfg)
}

// NewEcho builds the Echo instance with middleware and routes.
func NewEcho(cfg *config.Config, svc *Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg, svc.Sessions)
	setupRoutes(e, cfg, svc)
	return e
}

func setupRoutes(e *echo.Echo, cfg *config.Config, svc *Services) {
	h := handlers.New(svc.Repo, svc.Ledger, svc.Engine).WithEvents(svc.Events, svc.Sessions)
	ah := handlers.NewAuth(svc.Auth, svc.Sessions).WithEvents(svc.Events)

	e.GET("/health", h.Health)

	// Public API
	api := e.Group("/api")
	api.GET("/directory/rpc", h.RPCEndpoints)
	api.GET("/directory/bootnodes", h.BootNodes)
	api.GET("/directory/beacons", h.BeaconNodes)
	api.GET("/requests/:tracking_id", h.RequestStatus)

	limited := submissionLimiter(cfg.RateLimit.Submissions)
	api.POST("/requests/nodes", h.SubmitNode, limited)
	api.POST("/requests/tokens", h.SubmitToken, limited)

	// Admin API
	admin := e.Group("/admin", csrfMiddleware(cfg), csrfToHeader())
	admin.GET("/setup", ah.SetupStatus)
	admin.POST("/setup", ah.Setup)
	admin.POST("/login", ah.Login)
	admin.POST("/logout", ah.Logout)

	protected := admin.Group("", requireAuth())
	protected.GET("/me", ah.Me)
	protected.GET("/events", h.Events)
	protected.PUT("/account/username", ah.ChangeUsername)
	protected.PUT("/account/password", ah.ChangePassword)

	nodes := protected.Group("/requests/nodes")
	nodes.GET("", h.NodeRequests)
	nodes.GET("/:id", h.NodeRequest)
	nodes.POST("/:id/approve", h.ApproveNode)
	nodes.POST("/:id/reject", h.RejectNode)
	nodes.PUT("/:id/notes", h.NodeNotes)

	tokens := protected.Group("/requests/tokens")
	tokens.GET("", h.TokenRequests)
	tokens.GET("/:id", h.TokenRequest)
	tokens.POST("/:id/approve", h.ApproveToken)
	tokens.POST("/:id/reject", h.RejectToken)
	tokens.POST("/:id/transfer", h.TransferToken)
	tokens.PUT("/:id/notes", h.TokenNotes)

	dir := protected.Group("/directory")
	dir.GET("/rpc", h.AdminRPCEndpoints)
	dir.POST("/rpc", h.CreateRPCEndpoint)
	dir.PUT("/rpc/:id", h.UpdateRPCEndpoint)
	dir.DELETE("/rpc/:id", h.DeleteRPCEndpoint)
	dir.GET("/bootnodes", h.AdminBootNodes)
	dir.POST("/bootnodes", h.CreateBootNode)
	dir.PUT("/bootnodes/:id", h.UpdateBootNode)
	dir.DELETE("/bootnodes/:id", h.DeleteBootNode)
	dir.GET("/beacons", h.AdminBeaconNodes)
	dir.POST("/beacons", h.CreateBeaconNode)
	dir.PUT("/beacons/:id", h.UpdateBeaconNode)
	dir.DELETE("/beacons/:id", h.DeleteBeaconNode)

	protected.GET("/settings", h.Settings)
	protected.PUT("/settings/:key", h.PutSetting)
	protected.DELETE("/settings/:key", h.DeleteSetting)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	switch tlsResult.Mode {
	case TLSModeOff:
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("https_redirect_active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeSelfSigned, TLSModeManual:
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
