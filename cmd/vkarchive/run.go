package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"vkarchive/internal/downloader"
	"vkarchive/pkg/auth"
	"vkarchive/pkg/config"
	"vkarchive/pkg/harvest"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/paginator"
	"vkarchive/pkg/ratelimit"
	"vkarchive/pkg/ui"
)

var (
	nPosts      int
	accountName string
	rateLimit   int
	notify      bool
	wikis       bool
	skipPhotos  bool
	skipAudios  bool
	skipVideos  bool
)

var runCmd = &cobra.Command{
	Use:   "run <url>",
	Short: "Harvest the wall of a VK page",
	Long: `Harvest posts from the wall of a VK user or community, newest first.

Every post is stored in cache/<page>/posts.db and its media is downloaded to
cache/<page>/{photos,audios,videos}/<post id>/<ordinal>. Posts that are
already stored are reported and their media is only fetched when missing.

Credentials are taken from, in order:
  - the --account flag (a login stored with 'vkarchive auth login')
  - VKARCHIVE_ACCESS_TOKEN / VKARCHIVE_AUDIO_TOKEN or the config file
  - the most recently stored login`,
	Example: `  # Harvest the whole wall
  vkarchive run https://vk.com/apiclub

  # Harvest the 50 newest posts
  vkarchive run https://vk.com/apiclub --n-posts 50

  # Also save wiki pages linked from posts
  vkarchive run https://vk.com/apiclub --wikis`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&nPosts, "n-posts", "n", paginator.All, "number of newest posts to harvest (-1 for all)")
	runCmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored login")
	runCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "API requests per second (default 3)")
	runCmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the run ends")
	runCmd.Flags().BoolVar(&wikis, "wikis", false, "save wiki pages linked from post text")
	runCmd.Flags().BoolVar(&skipPhotos, "skip-photos", false, "do not download photos")
	runCmd.Flags().BoolVar(&skipAudios, "skip-audios", false, "do not download audios")
	runCmd.Flags().BoolVar(&skipVideos, "skip-videos", false, "do not download videos")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	rawURL := strings.TrimSpace(args[0])

	flags := map[string]interface{}{}
	if rateLimit > 0 {
		flags["rate-limit"] = rateLimit
	}
	for name, value := range map[string]bool{"wikis": wikis, "skip-photos": skipPhotos, "skip-audios": skipAudios, "skip-videos": skipVideos} {
		if cmd.Flags().Changed(name) {
			flags[name] = value
		}
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	account, err := resolveAccount(cfg)
	if err != nil {
		return err
	}

	limiter, err := ratelimit.New(cfg.RateLimit.Strategy, cfg.RateLimit.RequestsPerSecond)
	if err != nil {
		return err
	}
	session := auth.NewSession(account, cfg, limiter, log)

	h := harvest.New(cfg, harvest.Deps{
		API:     session.Handle(),
		Audios:  session.ArchiveHandle(),
		Fetcher: downloader.NewHTTPFetcher(&cfg.Download, cfg.VK.UserAgent, log),
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintInfo("Target page", rawURL)
	summary, err := h.Run(ctx, rawURL, nPosts)

	var notifier *ui.Notifier
	if notify {
		notifier = ui.NewNotifier()
	}

	if err != nil {
		log.WithError(err).WithField("state", h.State().String()).Error("Harvest failed")
		if notifier != nil {
			notifier.RunFailed(rawURL, err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("interrupted; run again to resume")
		}
		return err
	}

	if notifier != nil {
		notifier.RunFinished(summary.Page.ScreenName, summary.Handled, summary.Failed)
	}
	return nil
}

// resolveAccount picks the credentials for a run
func resolveAccount(cfg *config.Config) (*auth.Account, error) {
	if accountName == "" {
		if account := auth.AccountFromConfig(cfg); account != nil {
			logger.Info("Using token from configuration")
			return account, nil
		}
	}

	manager, err := auth.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	var account *auth.Account
	if accountName != "" {
		account, err = manager.Retrieve(accountName)
	} else {
		account, err = manager.RetrieveDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("no VK access token found; run 'vkarchive auth login' or set VKARCHIVE_ACCESS_TOKEN: %w", err)
	}

	logger.WithField("account", account.Login).Info("Using stored credentials")
	ui.PrintInfo("Using account", account.Login)
	return account, nil
}
