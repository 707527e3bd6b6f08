package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"vkarchive/pkg/harvest"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/ui"
)

var renderCmd = &cobra.Command{
	Use:   "render <url>",
	Short: "Render the archive of a page",
	Long: `Render the harvested archive of a page.

Only the number of stored posts is reported for now.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawURL := strings.TrimSpace(args[0])

		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}

		ui.PrintStatus(fmt.Sprintf("Rendering %s", rawURL))
		h := harvest.New(cfg, harvest.Deps{}, logger.GetLogger())
		count, err := h.Inspect(context.Background(), rawURL)
		if err != nil {
			return err
		}

		ui.PrintInfo("Stored posts", fmt.Sprintf("%d", count))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
