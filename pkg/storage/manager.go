package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vkarchive/pkg/models"
)

const tempSuffix = ".tmp"

// Manager owns the media tree of one page:
// <pageDir>/<kind>/<postID>/<ordinal>
type Manager struct {
	pageDir  string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// Kinds lists every directory created under a page directory
var Kinds = []models.Kind{models.KindPhoto, models.KindAudio, models.KindVideo, models.KindWiki}

// NewManager creates the page directory and one directory per kind
func NewManager(pageDir string) (*Manager, error) {
	m := Attach(pageDir)

	for _, kind := range Kinds {
		if err := os.MkdirAll(filepath.Join(pageDir, string(kind)), m.dirPerm); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", kind, err)
		}
	}

	return m, nil
}

// Attach returns a manager for an existing page directory without
// creating anything
func Attach(pageDir string) *Manager {
	return &Manager{pageDir: pageDir, dirPerm: 0755, filePerm: 0644}
}

// PageDir returns the page directory path
func (m *Manager) PageDir() string {
	return m.pageDir
}

// Dir returns the directory holding kind media of one post
func (m *Manager) Dir(kind models.Kind, postID int64) string {
	return filepath.Join(m.pageDir, string(kind), strconv.FormatInt(postID, 10))
}

// Path returns the file path of one media item
func (m *Manager) Path(kind models.Kind, postID int64, ordinal int) string {
	return filepath.Join(m.Dir(kind, postID), strconv.Itoa(ordinal))
}

// Stored counts the completed items of kind for a post. exists is false
// when the post has no directory for kind yet. Temporary files from an
// interrupted write are not counted.
func (m *Manager) Stored(kind models.Kind, postID int64) (count int, exists bool, err error) {
	entries, err := os.ReadDir(m.Dir(kind, postID))
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), tempSuffix) {
			continue
		}
		if _, err := strconv.Atoi(entry.Name()); err == nil {
			count++
		}
	}
	return count, true, nil
}

// IsComplete reports whether a post already holds exactly expected items
// of kind
func (m *Manager) IsComplete(kind models.Kind, postID int64, expected int) (bool, error) {
	count, exists, err := m.Stored(kind, postID)
	if err != nil {
		return false, err
	}
	return exists && count == expected, nil
}

// Prune removes the items of kind for a post whose ordinal is keep or
// higher, along with leftover temporary files
func (m *Manager) Prune(kind models.Kind, postID int64, keep int) (removed int, err error) {
	dir := m.Dir(kind, postID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, tempSuffix) {
			ordinal, err := strconv.Atoi(name)
			if err != nil || ordinal < keep {
				continue
			}
			removed++
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return removed, nil
}

// Save writes one media item from r, replacing any previous content
func (m *Manager) Save(r io.Reader, kind models.Kind, postID int64, ordinal int) error {
	if err := os.MkdirAll(m.Dir(kind, postID), m.dirPerm); err != nil {
		return fmt.Errorf("failed to create post directory: %w", err)
	}

	filename := m.Path(kind, postID, ordinal)

	// Create temporary file first
	tempFile := filename + tempSuffix
	out, err := os.OpenFile(tempFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, m.filePerm)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to save %s data: %w", kind, err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	// Atomic rename
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// RemoveAll deletes the page directory with everything under it
func (m *Manager) RemoveAll() error {
	if err := os.RemoveAll(m.pageDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", m.pageDir, err)
	}
	return nil
}
