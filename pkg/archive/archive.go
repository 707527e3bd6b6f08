// Package archive downloads the media of normalized posts into a page's
// media tree.
//
// Each (post, kind) pair is handled as a unit. When the post's directory
// for a kind already holds exactly as many items as the post carries, the
// kind is skipped; otherwise every item of that kind is fetched again and
// written over its ordinal file. Items that fail are appended to the error
// log and the run moves on.
package archive

import (
	"context"
	"fmt"
	"strings"

	"vkarchive/internal/downloader"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/models"
	"vkarchive/pkg/storage"
	"vkarchive/pkg/ui"
	"vkarchive/pkg/vk"
)

// AudioLookup resolves "owner_id" audio keys to stream URLs
type AudioLookup interface {
	AudioGetByID(ctx context.Context, audioKey string) ([]vk.Audio, error)
}

// WikiSource fetches wiki page HTML
type WikiSource interface {
	PagesGet(ctx context.Context, ownerID, pageID int64) (*vk.WikiPage, error)
}

// Options controls what gets archived
type Options struct {
	// OwnerID of the page; topic links in post text are matched against it
	OwnerID int64

	SkipPhotos bool
	SkipAudios bool
	SkipVideos bool
	Wikis      bool

	// OnFailure is called with the locator of every failed item
	OnFailure func(locator string)
}

// KindReport summarizes one kind of one post
type KindReport struct {
	Expected int
	Written  int
	Failed   int
	Skipped  bool
}

// Report summarizes one post
type Report map[models.Kind]KindReport

// Written returns the number of files written across kinds
func (r Report) Written() int {
	n := 0
	for _, k := range r {
		n += k.Written
	}
	return n
}

// Failed returns the number of failed items across kinds
func (r Report) Failed() int {
	n := 0
	for _, k := range r {
		n += k.Failed
	}
	return n
}

// Archiver writes the media of one page
type Archiver struct {
	media  *storage.Manager
	runner *downloader.Runner
	audios AudioLookup
	wikis  WikiSource
	topics *vk.TopicMatcher
	errLog *ErrorLog
	opts   Options
	logger logger.Logger
}

// New creates an archiver. audios and wikis may be nil when the matching
// kinds are disabled.
func New(media *storage.Manager, fetcher downloader.MediaDownloader, audios AudioLookup, wikis WikiSource, errLog *ErrorLog, opts Options, log logger.Logger) *Archiver {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "archive")
	return &Archiver{
		media:  media,
		runner: downloader.NewRunner(fetcher, media, log),
		audios: audios,
		wikis:  wikis,
		topics: vk.NewTopicMatcher(opts.OwnerID),
		errLog: errLog,
		opts:   opts,
		logger: log,
	}
}

// fetchFunc archives the item at ordinal and returns its locator for the
// error log
type fetchFunc func(ctx context.Context, ordinal int) (locator string, err error)

// Archive downloads every media kind of post. Only cancellation is
// returned as an error; item failures are counted in the report.
func (a *Archiver) Archive(ctx context.Context, post models.Post) (Report, error) {
	report := make(Report)

	photos := post.Photos()
	rep, err := a.archiveKind(ctx, models.KindPhoto, post.ID, len(photos), a.opts.SkipPhotos,
		func(ctx context.Context, i int) (string, error) {
			return photos[i].URL, a.download(ctx, photos[i].URL, models.KindPhoto, post.ID, i)
		})
	report[models.KindPhoto] = rep
	if err != nil {
		return report, err
	}

	audios := post.Audios()
	rep, err = a.archiveKind(ctx, models.KindAudio, post.ID, len(audios), a.opts.SkipAudios,
		func(ctx context.Context, i int) (string, error) {
			return a.downloadAudio(ctx, audios[i], post.ID, i)
		})
	report[models.KindAudio] = rep
	if err != nil {
		return report, err
	}

	videos := post.Videos()
	rep, err = a.archiveKind(ctx, models.KindVideo, post.ID, len(videos), a.opts.SkipVideos,
		func(ctx context.Context, i int) (string, error) {
			return videos[i].URL, a.download(ctx, videos[i].URL, models.KindVideo, post.ID, i)
		})
	report[models.KindVideo] = rep
	if err != nil {
		return report, err
	}

	if a.opts.Wikis && a.wikis != nil {
		rep, err = a.archiveWikis(ctx, post)
		report[models.KindWiki] = rep
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

func (a *Archiver) archiveKind(ctx context.Context, kind models.Kind, postID int64, expected int, disabled bool, fetch fetchFunc) (KindReport, error) {
	rep := KindReport{Expected: expected}
	fields := map[string]interface{}{
		"kind":     string(kind),
		"post_id":  postID,
		"expected": expected,
	}

	if expected == 0 {
		a.prune(kind, postID, 0, fields)
		return rep, nil
	}

	if disabled {
		a.logger.DebugWithFields("Kind disabled, skipping", fields)
		rep.Skipped = true
		return rep, nil
	}

	complete, err := a.media.IsComplete(kind, postID, expected)
	if err != nil {
		a.logger.WithError(err).WarnWithFields("Failed to inspect media directory", fields)
	}
	if complete {
		a.logger.Info(fmt.Sprintf("%s from %d are downloaded", kindTitle(kind), postID))
		rep.Skipped = true
		return rep, nil
	}

	// items dropped since an earlier run leave ordinals past expected
	a.prune(kind, postID, expected, fields)

	for i := 0; i < expected; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		locator, err := fetch(ctx, i)
		if err != nil {
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			rep.Failed++
			a.fail(kind, postID, i, locator, err)
			continue
		}
		rep.Written++
		logger.LogMediaFetch(a.logger, a.media.PageDir(), postID, string(kind), i, nil)
	}

	return rep, nil
}

func (a *Archiver) prune(kind models.Kind, postID int64, keep int, fields map[string]interface{}) {
	removed, err := a.media.Prune(kind, postID, keep)
	if err != nil {
		a.logger.WithError(err).WarnWithFields("Failed to remove stale media", fields)
		return
	}
	if removed > 0 {
		a.logger.InfoWithFields(fmt.Sprintf("Removed %d stale %s", removed, kind), fields)
	}
}

func (a *Archiver) download(ctx context.Context, url string, kind models.Kind, postID int64, ordinal int) error {
	result := a.runner.Process(ctx, downloader.Job{
		URL:     url,
		Kind:    kind,
		PostID:  postID,
		Ordinal: ordinal,
	})
	return result.Error
}

// downloadAudio looks the stream URL up before fetching the bytes
func (a *Archiver) downloadAudio(ctx context.Context, audio models.Audio, postID int64, ordinal int) (string, error) {
	locator := "audio:" + audio.Locator()
	if a.audios == nil {
		return locator, fmt.Errorf("no audio session")
	}

	items, err := a.audios.AudioGetByID(ctx, audio.Locator())
	if err != nil {
		return locator, fmt.Errorf("audio lookup failed: %w", err)
	}
	if len(items) == 0 || items[0].URL == "" {
		return locator, fmt.Errorf("audio %s has no stream URL", audio.Locator())
	}

	url := items[0].URL
	return url, a.download(ctx, url, models.KindAudio, postID, ordinal)
}

func (a *Archiver) fail(kind models.Kind, postID int64, ordinal int, locator string, err error) {
	logger.LogMediaFetch(a.logger, a.media.PageDir(), postID, string(kind), ordinal, err)

	if logErr := a.errLog.Append(locator); logErr != nil {
		a.logger.WithError(logErr).Error("Failed to append to error log")
	}
	ui.PrintError(fmt.Sprintf("Failed fetching %s, URL is logged in %s", kindNoun(kind), a.errLog.Path()))

	if a.opts.OnFailure != nil {
		a.opts.OnFailure(locator)
	}
}

func kindTitle(kind models.Kind) string {
	s := string(kind)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func kindNoun(kind models.Kind) string {
	switch kind {
	case models.KindPhoto:
		return "an image"
	case models.KindAudio:
		return "an audio"
	case models.KindVideo:
		return "a video"
	case models.KindWiki:
		return "a wiki page"
	default:
		return "a file"
	}
}
