package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/biodex/cliparse"
	"github.com/danielhkuo/biodex/db"
	"github.com/danielhkuo/biodex/gameconfig"
	"github.com/danielhkuo/biodex/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve [flags]",
	Short: "Run the HTTP API server",
	Long: `Runs the API server. Flags fall back to environment variables
(PORT, DATABASE_URL, GAME_CONFIG, ADMIN_KEY, LOG_LEVEL) and .env.`,
	// flags are parsed by cliparse so the server also runs without cobra
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliparse.ParseFlags(args)
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg)
	},
}

func runServe(ctx context.Context, cfg cliparse.Config) error {
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn); err != nil {
		return err
	}
	slog.Info("Database schema ready")

	orm, err := db.OpenORM(dbConn)
	if err != nil {
		return err
	}

	store, err := gameconfig.Load(cfg.GameConfigPath)
	if err != nil {
		return err
	}
	slog.Info("Game settings loaded", "path", store.Path())

	server := &http.Server{
		Handler:           router.NewRouter(dbConn, orm, cfg, store),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if store.Path() != "" {
		g.Go(func() error {
			return store.Watch(ctx)
		})
	}

	err = g.Wait()
	slog.Info("Server closed", "error", err)
	return err
}
