package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"vkarchive/pkg/harvest"
	"vkarchive/pkg/logger"
)

var fullClean bool

var cleanCmd = &cobra.Command{
	Use:   "clean <url>",
	Short: "Drop the stored posts of a page",
	Long: `Drop the posts database of a page so the next run stores every post again.

Downloaded media is kept unless --full is given, in which case the whole
cache/<page> directory is deleted. A page with no stored data is left alone.`,
	Example: `  vkarchive clean https://vk.com/apiclub
  vkarchive clean https://vk.com/apiclub --full`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}

		h := harvest.New(cfg, harvest.Deps{}, logger.GetLogger())
		_, err = h.Clean(context.Background(), strings.TrimSpace(args[0]), fullClean)
		return err
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&fullClean, "full", "f", false, "also delete downloaded media")
}
