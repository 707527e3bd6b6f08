// Package logger provides the structured logging interface used across vkarchive.
//
// It wraps zerolog with a small field-oriented API:
//
//	log := logger.GetLogger().WithField("page", "apiclub")
//	log.InfoWithFields("Post stored", map[string]interface{}{"post_id": 42})
//	log.WithError(err).Warn("Media fetch failed")
//
// Console output goes to stderr so that user-facing progress lines on stdout
// stay readable. Tests use NewTestLogger to capture and inspect messages, or
// NewNopLogger to discard them.
package logger
