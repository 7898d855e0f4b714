package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	libconfig "roomcontrol/backend/libs/config"
	"roomcontrol/backend/libs/logging"
	"roomcontrol/backend/services/control-service/internal/app"
	"roomcontrol/backend/services/control-service/internal/config"
)

const serviceName = "control-service"

var (
	configPath string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Room environmental control loop",
		Long:         "Ingests room telemetry over MQTT, evaluates per-room thresholds every interval and switches purifiers and exhaust fans.",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file (overrides "+libconfig.PathEnv+")")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run ingestion, the control scheduler and the HTTP API",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "cycle",
		Short: "Run a single control cycle and exit",
		RunE:  runCycle,
	})
	return root
}

func setup(mode app.Mode) (*app.App, *zap.Logger, error) {
	if configPath != "" {
		if err := os.Setenv(libconfig.PathEnv, configPath); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	logger, err := logging.NewLogger(serviceName, level)
	if err != nil {
		return nil, nil, err
	}

	application, err := app.New(cfg, logger, mode)
	if err != nil {
		logger.Error("failed to init application", zap.Error(err))
		_ = logger.Sync()
		return nil, nil, err
	}
	return application, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, logger, err := setup(app.ModeServe)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer application.Close()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application stopped with error", zap.Error(err))
		return err
	}
	return nil
}

func runCycle(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, logger, err := setup(app.ModeCycle)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer application.Close()

	report, err := application.RunCycle(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cycle %s: rooms=%d instructions=%d sent=%d failed=%d skipped=%q\n",
		report.ID, report.RoomsEvaluated, report.Instructions, report.CommandsSent, report.CommandsFailed, report.Skipped)
	return nil
}
