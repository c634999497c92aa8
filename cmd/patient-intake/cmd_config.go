package main

import (
	"errors"
	"fmt"
	"os"

	"patient-intake-service/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var forceConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the YAML config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to --config",
	Long: `init writes the configuration currently in effect (defaults, the existing
file if any, and PATIENT_INTAKE_* overrides) to the --config path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := writeConfig(configPath, cfg, forceConfig); err != nil {
			return err
		}
		logger.Info("config written", zap.String("path", configPath))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceConfig, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

// writeConfig refuses to replace an existing file unless force is set.
func writeConfig(path string, c *config.Config, force bool) error {
	if !force {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			return fmt.Errorf("config %s already exists (use --force to overwrite)", path)
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("check config %s: %w", path, err)
		}
	}
	return c.Save(path)
}
