package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	api "github.com/Manas-Phal/CCHack-SpaceExplorer/internal/api"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/auth"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/config"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/media"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/service"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
)

func main() {
	cfg := config.Load()
	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBType == "file" || cfg.DBType == "sqlite" {
		for _, p := range []string{cfg.FileObservations, cfg.FileUsers, cfg.SQLitePath} {
			_ = os.MkdirAll(filepath.Dir(p), 0755)
		}
	}
	store, err := storage.NewStore(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer store.Close()

	provider, err := auth.NewProvider(ctx, cfg, store, logger)
	if err != nil {
		logger.Fatalf("failed to init auth: %v", err)
	}

	reminders := service.NewReminders(func(r service.Reminder) {
		logger.Infof("reminder due: user=%s event=%q on %s", r.UserID, r.Event.Title, r.Event.Date)
	}, logger)
	if err := reminders.Start(""); err != nil {
		logger.Fatalf("failed to schedule reminders: %v", err)
	}
	defer reminders.Stop()

	var images media.ImageStore
	if cfg.MinioEndpoint != "" {
		ms, err := media.NewMinioStore(ctx, media.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, logger)
		if err != nil {
			logger.Fatalf("failed to init image store: %v", err)
		}
		images = ms
	}

	app := api.NewApp(api.Deps{
		Logger:      logger,
		Store:       store,
		Auth:        provider,
		Reminders:   reminders,
		Images:      images,
		Cookies:     api.NewCookieStore(cfg.CookieSecret, cfg.Env == "production"),
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		logger.Infof("Server running on %s (storage=%s auth=%s)", cfg.HTTPAddr, cfg.DBType, cfg.AuthBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
