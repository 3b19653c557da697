package cmd

import (
	"fmt"

	"github.com/brogergvhs/picdl/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the picdl config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.EnsureRoot(); err != nil {
			return err
		}

		path := config.ConfigPath()
		if err := config.SaveYAML(config.DefaultConfig(), path); err != nil {
			return fmt.Errorf("cannot write config: %w", err)
		}

		fmt.Printf("Config written: %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, usedPath, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Config file: %s\n", usedPath)
		cfg.Print()
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
