package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"osf/internal/config"
	"osf/internal/db"
	"osf/internal/logging"
	"osf/internal/metrics"
	"osf/internal/router"
	"osf/internal/services"
	"osf/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func newMigrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			log := logging.New(cfg.Log)
			conn, err := db.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			if err := db.Migrate(conn); err != nil {
				return err
			}
			log.Info("Database migrated")
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.New(cfg.Log)

	conn, err := db.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	avatars, err := utils.NewAvatarBuilder(cfg.Gravatar.CacheSize)
	if err != nil {
		return fmt.Errorf("avatar cache: %w", err)
	}
	comments, err := services.NewCommentService(conn, log, services.Options{
		MaxLength:    cfg.Comments.MaxLength,
		GravatarSize: cfg.Gravatar.SizeDiscussion,
		Avatars:      avatars,
		Metrics:      m,
	})
	if err != nil {
		return err
	}

	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.New(router.Deps{
		DB:            conn,
		Log:           log,
		Comments:      comments,
		Nodes:         services.NewNodeService(conn, cfg.API.Domain),
		Avatars:       avatars,
		SessionName:   cfg.Session.Name,
		SessionSecret: cfg.Session.Secret,
		APIMinVersion: cfg.API.MinVersion,
		APIMaxVersion: cfg.API.MaxVersion,
		Templates:     cfg.Templates.Enabled,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			ErrorLog:      log,
			ErrorHandling: promhttp.HTTPErrorOnError,
		}),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("OSF comments server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
