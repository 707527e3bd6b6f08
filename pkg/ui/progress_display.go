package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay renders a one-line progress counter for a harvest run
type ProgressDisplay struct {
	mu          sync.Mutex
	page        string
	totalPosts  int
	handled     int
	stored      int
	duplicates  int
	files       int
	errors      int
	currentPost int64
	startTime   time.Time
	isDebug     bool
}

// NewProgressDisplay creates a new progress display
func NewProgressDisplay(page string, totalPosts int, debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		page:       page,
		totalPosts: totalPosts,
		startTime:  time.Now(),
		isDebug:    debug,
	}
}

// StartPost marks the start of a post
func (p *ProgressDisplay) StartPost(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.currentPost = id
	if !p.isDebug {
		p.printProgress()
	}
}

// CompletePost marks a post as handled. stored is false when the post was
// already in the database; files counts the media written for it.
func (p *ProgressDisplay) CompletePost(id int64, stored bool, files int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handled++
	p.files += files
	if stored {
		p.stored++
	} else {
		p.duplicates++
		printf(false, "\r%s\r%s Post %d is already processed\n", strings.Repeat(" ", 120), Cyan(PrefixStatus), id)
	}

	if !p.isDebug {
		p.printProgress()
		return
	}
	state := "stored"
	if !stored {
		state = "already stored"
	}
	printf(false, "%s post %d • %s • %d files\n", Green("✓"), id, state, files)
}

// FailMedia counts a media item that could not be fetched
func (p *ProgressDisplay) FailMedia(locator string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errors++
	if p.isDebug {
		printf(false, "%s %s\n", Red("✗"), locator)
	}
}

// ScanningBatch indicates a new listing page is being fetched
func (p *ProgressDisplay) ScanningBatch(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isDebug {
		printf(false, "%s Scanning page %d...\n", Magenta("→"), page)
	}
}

// UpdateTotal updates the number of posts the run targets
func (p *ProgressDisplay) UpdateTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalPosts = total
}

// printProgress prints the minimal progress line
func (p *ProgressDisplay) printProgress() {
	const barWidth = 20

	filled := barWidth
	if p.totalPosts > 0 {
		filled = min(barWidth, p.handled*barWidth/p.totalPosts)
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("%s [%s] %d/%d • %d files • %s",
		Cyan(p.page),
		bar,
		p.handled,
		p.totalPosts,
		p.files,
		formatDuration(time.Since(p.startTime)),
	)
	if p.currentPost != 0 {
		line += fmt.Sprintf(" • post %d", p.currentPost)
	}
	if p.errors > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d errors", p.errors)))
	}

	printf(false, "\r%s\r%s", strings.Repeat(" ", 120), line)
}

// Complete prints the run summary
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	printf(false, "\n\n%s Harvested %d posts from %s\n", Green("✓"), p.handled, p.page)
	printf(false, "  %s %d new, %d already stored, %d files in %s\n",
		Dim("•"),
		p.stored,
		p.duplicates,
		p.files,
		formatDuration(time.Since(p.startTime)),
	)
	if p.errors > 0 {
		printf(false, "  %s %d media downloads failed\n", Dim("•"), p.errors)
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
