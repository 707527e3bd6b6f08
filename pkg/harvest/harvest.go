package harvest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vkarchive/pkg/archive"
	"vkarchive/pkg/config"
	"vkarchive/pkg/errors"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/metadata"
	"vkarchive/pkg/models"
	"vkarchive/pkg/paginator"
	"vkarchive/pkg/resolver"
	"vkarchive/pkg/storage"
	"vkarchive/pkg/store"
	"vkarchive/pkg/ui"
)

// Summary describes a finished or aborted run
type Summary struct {
	Page       models.PageIdentity
	RunID      string
	Total      int
	Target     int
	Handled    int
	Inserted   int
	Duplicates int
	Written    int
	Failed     int
}

// Harvester runs harvests and maintenance for pages under one cache root
type Harvester struct {
	cfg    *config.Config
	deps   Deps
	state  State
	logger logger.Logger
}

// New creates a Harvester
func New(cfg *config.Config, deps Deps, log logger.Logger) *Harvester {
	if log == nil {
		log = logger.GetLogger()
	}
	if deps.Audios == nil {
		if a, ok := deps.API.(archive.AudioLookup); ok {
			deps.Audios = a
		}
	}
	return &Harvester{
		cfg:    cfg,
		deps:   deps,
		state:  StateIdle,
		logger: log.WithField("component", "harvest"),
	}
}

// State returns the current lifecycle state
func (h *Harvester) State() State {
	return h.state
}

func (h *Harvester) setState(s State) {
	h.logger.DebugWithFields("State change", map[string]interface{}{
		"from": h.state.String(),
		"to":   s.String(),
	})
	h.state = s
}

// PageDir returns the working directory of a page
func (h *Harvester) PageDir(screenName string) string {
	return filepath.Join(h.cfg.Output.CacheDirectory, screenName)
}

// Run harvests up to requested posts (paginator.All for every post) of
// the page at rawURL. The URL is validated before any remote call.
func (h *Harvester) Run(ctx context.Context, rawURL string, requested int) (*Summary, error) {
	screenName, err := models.ParseScreenName(rawURL)
	if err != nil {
		return nil, err
	}

	if _, err := h.deps.API.UsersGet(ctx); err != nil {
		return nil, fmt.Errorf("authentication check failed: %w", err)
	}
	h.setState(StateAuthenticated)
	ui.PrintSuccess("Auth successful")

	ownerID, err := h.deps.API.ResolveScreenName(ctx, screenName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", screenName, err)
	}
	page := models.PageIdentity{ScreenName: screenName, OwnerID: ownerID}
	h.setState(StateResolved)

	pageDir := h.PageDir(screenName)
	media, err := storage.NewManager(pageDir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "failed to create working directory")
	}
	posts, err := store.Open(ctx, filepath.Join(pageDir, store.FileName), h.logger)
	if err != nil {
		return nil, err
	}
	defer posts.Close()
	h.setState(StateInitialized)

	manifest := metadata.NewRunManifest(page, requested)
	log := h.logger.WithFields(map[string]interface{}{
		"run_id": manifest.RunID,
		"page":   page.String(),
	})
	log.Info("Starting harvest")

	summary := &Summary{Page: page, RunID: manifest.RunID}
	runErr := h.harvest(ctx, page, requested, media, posts, manifest, summary, log)

	manifest.Finish(runErr == nil)
	if err := manifest.Save(pageDir); err != nil {
		log.WithError(err).Warn("Failed to write run manifest")
	}
	if runErr != nil {
		return summary, runErr
	}

	h.setState(StateDone)
	log.InfoWithFields("Harvest finished", map[string]interface{}{
		"handled":  summary.Handled,
		"inserted": summary.Inserted,
		"written":  summary.Written,
		"failed":   summary.Failed,
	})
	return summary, nil
}

func (h *Harvester) harvest(ctx context.Context, page models.PageIdentity, requested int, media *storage.Manager, posts *store.Store, manifest *metadata.RunManifest, summary *Summary, log logger.Logger) error {
	progress := ui.NewProgressDisplay(page.ScreenName, 0, h.cfg.Logging.Level == "debug")

	archiver := archive.New(media, h.deps.Fetcher, h.deps.Audios, h.deps.API,
		archive.NewErrorLog(h.cfg.Output.ErrorLog),
		archive.Options{
			OwnerID:    page.OwnerID,
			SkipPhotos: h.cfg.Download.SkipPhotos,
			SkipAudios: h.cfg.Download.SkipAudios,
			SkipVideos: h.cfg.Download.SkipVideos,
			Wikis:      h.cfg.Download.Wikis,
			OnFailure:  progress.FailMedia,
		}, log)
	normalizer := resolver.NewNormalizer(resolver.New(h.deps.API, log))

	pages := paginator.New(h.deps.API, log)
	pages.OnTarget(func(total, target int) {
		summary.Total, summary.Target = total, target
		manifest.Target = target
		progress.UpdateTotal(target)
	})

	h.setState(StateHarvesting)
	batchNo := 0
	for batch, err := range pages.Batches(ctx, page.ScreenName, requested) {
		if err != nil {
			return err
		}
		batchNo++
		progress.ScanningBatch(batchNo)

		for _, raw := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			progress.StartPost(raw.ID)

			post, err := normalizer.Normalize(ctx, raw)
			if err != nil {
				return fmt.Errorf("failed to normalize post %d: %w", raw.ID, err)
			}

			res, err := posts.Insert(ctx, post)
			if err != nil {
				return err
			}

			report, err := archiver.Archive(ctx, post)
			for kind, k := range report {
				manifest.AddMedia(kind, k.Written, k.Failed)
			}
			summary.Written += report.Written()
			summary.Failed += report.Failed()
			if err != nil {
				return err
			}

			summary.Handled++
			manifest.Handled++
			if res == store.Inserted {
				summary.Inserted++
				manifest.Inserted++
			} else {
				summary.Duplicates++
				manifest.Duplicates++
			}
			progress.CompletePost(post.ID, res == store.Inserted, report.Written())
		}

		logger.LogHarvestProgress(log, page.ScreenName, summary.Handled, summary.Target)
	}

	progress.Complete()
	return nil
}

// CleanResult tells what Clean removed
type CleanResult struct {
	Cleaned      bool
	MediaRemoved bool
}

// Clean drops the posts table of the page at rawURL and, with full, deletes
// its whole working directory. A page without a database is left alone.
func (h *Harvester) Clean(ctx context.Context, rawURL string, full bool) (CleanResult, error) {
	screenName, err := models.ParseScreenName(rawURL)
	if err != nil {
		return CleanResult{}, err
	}

	pageDir := h.PageDir(screenName)
	dbPath := filepath.Join(pageDir, store.FileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		ui.PrintStatus("There is no data associated with this URL")
		ui.PrintStatus("There is nothing to do")
		return CleanResult{}, nil
	}

	posts, err := store.Open(ctx, dbPath, h.logger)
	if err != nil {
		return CleanResult{}, err
	}
	dropErr := posts.Drop(ctx)
	closeErr := posts.Close()
	if dropErr != nil {
		return CleanResult{}, dropErr
	}
	if closeErr != nil {
		return CleanResult{}, errors.Wrap(closeErr, errors.ErrorTypeStorage, "failed to close posts database")
	}
	ui.PrintSuccess("Dropped posts database")

	result := CleanResult{Cleaned: true}
	if full {
		if err := storage.Attach(pageDir).RemoveAll(); err != nil {
			return result, errors.Wrap(err, errors.ErrorTypeStorage, "failed to delete downloaded media")
		}
		ui.PrintSuccess("Deleted downloaded media")
		result.MediaRemoved = true
	}

	h.logger.InfoWithFields("Page cleaned", map[string]interface{}{
		"page": screenName,
		"full": full,
	})
	return result, nil
}

// Inspect returns the number of stored posts of the page at rawURL
func (h *Harvester) Inspect(ctx context.Context, rawURL string) (int, error) {
	screenName, err := models.ParseScreenName(rawURL)
	if err != nil {
		return 0, err
	}

	dbPath := filepath.Join(h.PageDir(screenName), store.FileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return 0, errors.New(errors.ErrorTypeNotFound, 0, "There is no data associated with this URL")
	}

	posts, err := store.Open(ctx, dbPath, h.logger)
	if err != nil {
		return 0, err
	}
	defer posts.Close()

	return posts.Count(ctx)
}
