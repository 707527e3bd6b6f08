package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"vkarchive/pkg/config"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/ui"
)

var (
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool
	cacheDir   string
)

var rootCmd = &cobra.Command{
	Use:   "vkarchive",
	Short: "Incremental archiver for VK walls",
	Long: `vkarchive harvests the wall of a VK user or community into a local cache.

Posts are stored in a per-page SQLite database and their photos, audios and
videos are downloaded next to it. Runs are incremental: posts already stored
and media already on disk are not fetched again, so an interrupted run is
resumed by starting it again.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}
		if noColor {
			ui.SetNoColor(true)
		}
		if verbose && logLevel == "info" {
			logLevel = "debug"
		}

		switch cmd.Name() {
		case "version", "help", "completion":
		default:
			ui.PrintLogo()
		}
	},
}

// Execute runs the root command and exits with status 1 on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .vkarchive.yaml or ~/.config/vkarchive/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logs and per-post progress")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "cache root (default \"cache\")")

	rootCmd.SetVersionTemplate(`vkarchive {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig merges global flags with the command's own and initializes
// the global logger
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if cacheDir != "" {
		flags["cache-dir"] = cacheDir
	}
	if rootCmd.PersistentFlags().Changed("log-level") || verbose {
		flags["log-level"] = logLevel
	}
	if noColor {
		flags["no-color"] = true
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
