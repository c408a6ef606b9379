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

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rowanvale/costbook/internal/api"
	"github.com/rowanvale/costbook/internal/config"
	"github.com/rowanvale/costbook/internal/db"
	"github.com/rowanvale/costbook/internal/repository"
	"github.com/rowanvale/costbook/internal/rollup"
	"github.com/rowanvale/costbook/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "costbook",
		Short: "Construction budget rollup and modification workflow service",
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg config.Config) error {
	logger, err := buildLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewSQLiteUnitOfWork(database)
	projects := repository.NewSQLiteProjectRepo(database)
	lines := repository.NewSQLiteBudgetLineRepo(database)
	mods := repository.NewSQLiteModificationRepo(database)
	sequences := repository.NewSQLiteSequenceRepo(database)
	rollups := repository.NewSQLiteRollupRepo(database)
	facts := repository.NewSQLiteCostFactRepo(database)

	budgetSvc := service.NewBudgetService(projects, lines, rollup.NewAggregator(facts), uow)
	modSvc := service.NewModificationService(projects, lines, mods, sequences, rollups, uow)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewServer(budgetSvc, modSvc, logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("db", cfg.DBPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
