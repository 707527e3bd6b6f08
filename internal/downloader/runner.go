package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"vkarchive/pkg/logger"
	"vkarchive/pkg/models"
)

// Job is a single media download
type Job struct {
	URL     string
	Kind    models.Kind
	PostID  int64
	Ordinal int
}

// Result represents the outcome of a Job
type Result struct {
	Job      Job
	Success  bool
	Error    error
	Duration time.Duration
	Size     int
}

// MediaDownloader fetches media bytes
type MediaDownloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// MediaStorage stores media bytes
type MediaStorage interface {
	Save(r io.Reader, kind models.Kind, postID int64, ordinal int) error
}

// Runner processes jobs one at a time on the caller's goroutine
type Runner struct {
	client  MediaDownloader
	storage MediaStorage
	logger  logger.Logger
}

// NewRunner creates a runner
func NewRunner(client MediaDownloader, storage MediaStorage, log logger.Logger) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Runner{client: client, storage: storage, logger: log}
}

// Process downloads and stores one job. Failures are reported in the
// Result, never returned.
func (r *Runner) Process(ctx context.Context, job Job) Result {
	start := time.Now()
	result := Result{Job: job}

	fields := map[string]interface{}{
		"kind":    string(job.Kind),
		"post_id": job.PostID,
		"ordinal": job.Ordinal,
	}
	r.logger.DebugWithFields("Processing job", fields)

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	data, err := r.client.Fetch(ctx, job.URL)
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Size = len(data)

	if err := r.storage.Save(bytes.NewReader(data), job.Kind, job.PostID, job.Ordinal); err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)

		r.logger.ErrorWithFields("Failed to save media", map[string]interface{}{
			"kind":    string(job.Kind),
			"post_id": job.PostID,
			"error":   err.Error(),
			"size":    result.Size,
		})

		return result
	}

	result.Success = true
	result.Duration = time.Since(start)

	r.logger.DebugWithFields("Completed job successfully", map[string]interface{}{
		"kind":     string(job.Kind),
		"post_id":  job.PostID,
		"ordinal":  job.Ordinal,
		"size":     result.Size,
		"duration": result.Duration,
	})

	return result
}
