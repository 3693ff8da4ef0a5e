package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/handlers"
	"task-tracker-api/internal/notice"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/repository"
	"task-tracker-api/internal/routes"
	"task-tracker-api/internal/tracker"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd runs the HTTP API until interrupted.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap(cmd)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = log.Sync() }()
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}

			gin.SetMode(gin.ReleaseMode)
			hub := realtime.NewHub()
			notices := notice.NewStore(cfg.NoticeTTL)
			tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
			svc := tracker.NewService(repository.New(db), log, tracker.WithHub(hub))
			router := routes.SetupRoutes(handlers.New(svc, tokens, notices, hub, log), tokens, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go purgeNotices(ctx, notices, cfg.NoticeTTL)

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "%s listening on %s (db: %s)\n",
				color.New(color.FgGreen).Sprint("▶"), color.New(color.Bold).Sprint(cfg.Addr), cfg.DBPath)
			log.Info("server started", zap.String("addr", cfg.Addr), zap.String("db", cfg.DBPath))

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("listen: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides APP_ADDR)")
	return cmd
}

// purgeNotices drops notices nobody read before they expired.
func purgeNotices(ctx context.Context, store *notice.Store, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.PurgeExpired()
		}
	}
}
