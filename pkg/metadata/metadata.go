// Package metadata records a summary of the last harvest run of a page.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"vkarchive/pkg/models"
)

// FileName is the manifest file inside a page directory
const FileName = "page.json"

// RunManifest represents one harvest run of a page
type RunManifest struct {
	// Page
	ScreenName string `json:"screen_name"`
	OwnerID    int64  `json:"owner_id"`

	// Run
	RunID      string    `json:"run_id"`
	Requested  int       `json:"requested"`
	Target     int       `json:"target"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Completed  bool      `json:"completed"`

	// Posts
	Handled    int `json:"handled"`
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`

	// Media
	Written map[models.Kind]int `json:"written"`
	Failed  map[models.Kind]int `json:"failed"`
}

// NewRunManifest starts a manifest for a run with a fresh run id
func NewRunManifest(page models.PageIdentity, requested int) *RunManifest {
	return &RunManifest{
		ScreenName: page.ScreenName,
		OwnerID:    page.OwnerID,
		RunID:      uuid.NewString(),
		Requested:  requested,
		StartedAt:  time.Now().UTC(),
		Written:    make(map[models.Kind]int),
		Failed:     make(map[models.Kind]int),
	}
}

// AddMedia adds per-kind written and failed counts
func (m *RunManifest) AddMedia(kind models.Kind, written, failed int) {
	m.Written[kind] += written
	m.Failed[kind] += failed
}

// Finish stamps the end of the run
func (m *RunManifest) Finish(completed bool) {
	m.FinishedAt = time.Now().UTC()
	m.Completed = completed
}

// Duration returns how long the run took, or has taken so far
func (m *RunManifest) Duration() time.Duration {
	if m.FinishedAt.IsZero() {
		return time.Since(m.StartedAt)
	}
	return m.FinishedAt.Sub(m.StartedAt)
}

// Save writes the manifest to pageDir/page.json
func (m *RunManifest) Save(pageDir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Join(pageDir, FileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// Load reads the manifest of pageDir
func Load(pageDir string) (*RunManifest, error) {
	data, err := os.ReadFile(filepath.Join(pageDir, FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &m, nil
}

// Exists checks if pageDir has a manifest
func Exists(pageDir string) bool {
	_, err := os.Stat(filepath.Join(pageDir, FileName))
	return err == nil
}
