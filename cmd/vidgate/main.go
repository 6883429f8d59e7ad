package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	googleauthadapter "github.com/dmaselko/vidgate/internal/adapter/driven/googleauth"
	sqliteadapter "github.com/dmaselko/vidgate/internal/adapter/driven/sqlite"
	youtubeadapter "github.com/dmaselko/vidgate/internal/adapter/driven/youtube"
	httphandler "github.com/dmaselko/vidgate/internal/adapter/driving/http"
	"github.com/dmaselko/vidgate/internal/application"
	"github.com/dmaselko/vidgate/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing OAuth client credentials).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"reload_interval", cfg.ReloadInterval,
		"scopes", cfg.OAuthScopes,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	channelStore := sqliteadapter.NewChannelRepo(db, slog.Default())
	requestStore := sqliteadapter.NewUploadRequestRepo(db)
	authClient := googleauthadapter.NewClient(
		cfg.OAuthClientID,
		cfg.OAuthClientSecret,
		cfg.OAuthRedirectURL,
		cfg.OAuthScopes,
		cfg.RefreshTimeout,
	)
	host := youtubeadapter.NewClient(slog.Default(), cfg.UploadTimeout)

	// 6. Wire application services.
	cache := application.NewCredentialCache()
	manager := application.NewAuthManager(channelStore, authClient, cache, slog.Default())
	uploadSvc := application.NewUploadService(manager, host, requestStore, slog.Default())

	// The reload service performs the initial cache load and keeps it fresh.
	reloadSvc := application.NewReloadService(manager, cfg.ReloadInterval, slog.Default())
	go reloadSvc.Start(ctx)

	// 7. Create HTTP handler and register routes.
	apiHandler := httphandler.NewHandler(
		uploadSvc,
		manager,
		reloadSvc,
		authClient,
		requestStore,
		cfg.MaxVideoBytes(),
		cfg.MaxThumbnailBytes(),
		slog.Default(),
	)
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.UploadTimeout,
		WriteTimeout:      cfg.UploadTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("vidgate started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal, then drain in-flight requests.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
