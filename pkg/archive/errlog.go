package archive

import (
	"fmt"
	"os"
	"sync"
)

// ErrorLog is an append-only file of media locators that failed to
// download, one per line
type ErrorLog struct {
	path string
	mu   sync.Mutex
}

func NewErrorLog(path string) *ErrorLog {
	return &ErrorLog{path: path}
}

func (l *ErrorLog) Path() string {
	return l.path
}

// Append writes locator as a new line. The file is created on first use.
func (l *ErrorLog) Append(locator string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}

	_, err = fmt.Fprintln(f, locator)
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return closeErr
}
