package logger

// LogRequest logs a finished VK API call
func LogRequest(l Logger, method string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"api_method":  method,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("API request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("API request client error", fields)
	default:
		l.DebugWithFields("API request completed", fields)
	}
}

// LogMediaFetch logs the outcome of a single media item fetch
func LogMediaFetch(l Logger, page string, postID int64, kind string, ordinal int, err error) {
	entry := l.WithFields(map[string]interface{}{
		"page":    page,
		"post_id": postID,
		"kind":    kind,
		"ordinal": ordinal,
	})

	if err != nil {
		entry.WithError(err).Warn("Media fetch failed")
		return
	}
	entry.Debug("Media fetched")
}

// LogHarvestProgress logs how many posts of the target have been handled
func LogHarvestProgress(l Logger, page string, handled, target int) {
	l.InfoWithFields("Harvest progress", map[string]interface{}{
		"page":    page,
		"handled": handled,
		"target":  target,
	})
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
