// Package harvest drives a page through its lifecycle: authenticate,
// resolve the handle, prepare the working directory, then walk the wall
// newest-first, storing each post and archiving its media.
//
// A run is idempotent. Posts already in the database are reported as
// duplicates and media directories that already hold the expected number
// of files are not fetched again, so an interrupted run is resumed by
// running it again.
package harvest
