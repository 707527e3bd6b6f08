package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"vkarchive/pkg/config"
	"vkarchive/pkg/errors"
	"vkarchive/pkg/logger"
)

// HTTPFetcher downloads media bytes with plain GET requests
type HTTPFetcher struct {
	httpClient  *http.Client
	userAgent   string
	maxFileSize int64
	logger      logger.Logger
}

// NewHTTPFetcher creates a fetcher from the download settings. A zero
// MaxFileSize means no limit.
func NewHTTPFetcher(cfg *config.DownloadConfig, userAgent string, log logger.Logger) *HTTPFetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &HTTPFetcher{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		userAgent:   userAgent,
		maxFileSize: cfg.MaxFileSize,
		logger:      log.WithField("component", "downloader"),
	}
}

// SetHTTPClient replaces the underlying HTTP client
func (f *HTTPFetcher) SetHTTPClient(c *http.Client) {
	f.httpClient = c
}

// Fetch downloads the body at url. Any non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.logger.DebugWithFields("downloading media", map[string]interface{}{
		"url": url,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInput, fmt.Sprintf("invalid media URL %q", url))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.ErrorWithFields("failed to download media", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, errors.Wrap(err, errors.ErrorTypeNetwork, "failed to download media")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	body := io.Reader(resp.Body)
	if f.maxFileSize > 0 {
		body = io.LimitReader(resp.Body, f.maxFileSize+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		f.logger.ErrorWithFields("failed to read media data", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, errors.Wrap(err, errors.ErrorTypeNetwork, "failed to read media data")
	}
	if f.maxFileSize > 0 && int64(len(data)) > f.maxFileSize {
		return nil, errors.New(errors.ErrorTypeInput, 0, "media exceeds the %d byte limit", f.maxFileSize)
	}

	f.logger.DebugWithFields("successfully downloaded media", map[string]interface{}{
		"url":  url,
		"size": len(data),
	})

	return data, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return errors.New(errors.ErrorTypeNotFound, code, "media not found")
	case code == http.StatusForbidden || code == http.StatusUnauthorized:
		return errors.New(errors.ErrorTypeAccessDenied, code, "media access denied")
	case code == http.StatusTooManyRequests:
		return errors.New(errors.ErrorTypeRateLimit, code, "media host rate limited the request")
	case code >= 500:
		return errors.New(errors.ErrorTypeServerError, code, "media host error: %d", code)
	default:
		return errors.New(errors.ErrorTypeUnknown, code, "unexpected status code: %d", code)
	}
}
