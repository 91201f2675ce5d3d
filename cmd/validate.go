package main

import (
	"github.com/spf13/cobra"

	app "segmap/internal/application"
	"segmap/internal/container"
	"segmap/internal/domain/entity"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare existing outputs with the reference set without running the model",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	session, err := container.NewValidation(cfg, logger)
	if err != nil {
		return err
	}

	files, err := session.Batch.Discover(cfg.Test.File)
	if err != nil {
		return err
	}
	stems := make([]string, len(files))
	for i, f := range files {
		stems[i] = entity.Stem(f)
	}

	report, err := session.Validator.Validate(cmd.Context(), stems)
	if err != nil {
		return err
	}
	return app.WriteReport(cmd.OutOrStdout(), report)
}
