package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"segmap/config"
	app "segmap/internal/application"
	"segmap/internal/container"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "segmap",
	Short:        "Run a semantic segmentation model over test images and check the outputs against references",
	SilenceUsage: true,
	RunE:         runInference,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "cfg", "config.yaml", "configuration file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runInference(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	session, err := container.New(cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	logger.Info("model loaded",
		zap.String("model", cfg.Model.Name),
		zap.String("backbone", cfg.Model.Backbone),
		zap.Stringer("device", session.Device),
		zap.Int("classes", session.Palette.Len()),
	)

	report, err := session.Batch.Run(cmd.Context(), cfg.Test.File)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Results saved in %s\n", report.SaveDir)

	validation, err := session.Validator.Validate(cmd.Context(), report.Stems())
	if err != nil {
		return err
	}
	if err := app.WriteReport(cmd.OutOrStdout(), validation); err != nil {
		return err
	}
	return report.Err()
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zcfg.Build()
}
