package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"vkarchive/pkg/config"
	"vkarchive/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage vkarchive configuration files.

Configuration is merged from, highest priority first:
  - Command line flags
  - VKARCHIVE_* environment variables (also read from .env)
  - Configuration file
  - Default values`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = ".vkarchive.yaml"
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s", path)
		}

		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}

		ui.PrintSuccess("Configuration file created: " + path)
		fmt.Println("\nNext steps:")
		fmt.Println("1. Store a token with 'vkarchive auth login' or set access_token in the file")
		fmt.Println("2. Run 'vkarchive config validate' to check the configuration")
		fmt.Println("3. Start archiving with 'vkarchive run <url>'")
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration merged from every source. Tokens are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, nil)
		if err != nil {
			return err
		}

		display := *cfg
		display.VK.AccessToken = mask(display.VK.AccessToken)
		display.VK.AudioToken = mask(display.VK.AudioToken)

		data, err := yaml.Marshal(&display)
		if err != nil {
			return fmt.Errorf("failed to format configuration: %w", err)
		}

		ui.PrintHighlight("Current configuration")
		fmt.Println()
		fmt.Print(string(data))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, nil)
		if err != nil {
			return err
		}

		var problems []string
		if err := os.MkdirAll(cfg.Output.CacheDirectory, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create cache directory: %v", err))
		}
		if dir := filepath.Dir(cfg.Output.ErrorLog); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				problems = append(problems, fmt.Sprintf("cannot create error log directory: %v", err))
			}
		}
		if cfg.Logging.File != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
				problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
			}
		}

		if len(problems) > 0 {
			for _, p := range problems {
				ui.PrintError(p)
			}
			return fmt.Errorf("configuration has %d problem(s)", len(problems))
		}

		if err := cfg.RequireToken(); err != nil {
			ui.PrintWarning("No access token configured; stored logins will be used")
		}

		ui.PrintSuccess("Configuration is valid")
		ui.PrintInfo("Cache directory", cfg.Output.CacheDirectory)
		ui.PrintInfo("Error log", cfg.Output.ErrorLog)
		ui.PrintInfo("Rate limit", fmt.Sprintf("%d requests/second", cfg.RateLimit.RequestsPerSecond))
		ui.PrintInfo("Log level", cfg.Logging.Level)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd, showCmd, validateCmd)
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "***"
	default:
		return s[:4] + "..." + s[len(s)-4:]
	}
}
