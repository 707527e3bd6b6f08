// Package paginator walks a wall listing in fixed-size batches.
package paginator

import (
	"context"
	"fmt"
	"iter"

	"vkarchive/pkg/logger"
	"vkarchive/pkg/vk"
)

const (
	// PageSize is the number of posts requested per listing call
	PageSize = vk.MaxWallCount

	// All requests every post on the wall
	All = -1
)

// Lister is the slice of the API the paginator needs
type Lister interface {
	WallGet(ctx context.Context, domain string, count, offset int) (*vk.WallPage, error)
}

// Paginator yields batches of raw posts for one page
type Paginator struct {
	lister   Lister
	logger   logger.Logger
	onTarget func(total, target int)
}

// New creates a paginator over lister
func New(lister Lister, log logger.Logger) *Paginator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Paginator{lister: lister, logger: log}
}

// OnTarget registers fn to be called with the wall total and the effective
// target once the probe of each Batches run succeeds
func (p *Paginator) OnTarget(fn func(total, target int)) {
	p.onTarget = fn
}

// Total asks the listing for the number of posts on the wall
func (p *Paginator) Total(ctx context.Context, domain string) (int, error) {
	page, err := p.lister.WallGet(ctx, domain, 1, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts of %s: %w", domain, err)
	}
	return page.Count, nil
}

// Target returns how many posts a run over total posts should fetch.
// Any negative requested value means all of them.
func Target(requested, total int) int {
	if requested < 0 || requested > total {
		return total
	}
	return requested
}

// Batches lazily yields batches until the target is reached. The first
// call probes the total; each following call requests min(PageSize,
// remaining) posts at offset page*PageSize. An error is yielded once and
// ends the sequence. Every range over the result starts again at offset 0.
func (p *Paginator) Batches(ctx context.Context, domain string, requested int) iter.Seq2[[]vk.Post, error] {
	return func(yield func([]vk.Post, error) bool) {
		total, err := p.Total(ctx, domain)
		if err != nil {
			yield(nil, err)
			return
		}

		remaining := Target(requested, total)
		p.logger.InfoWithFields("Paginating wall", map[string]interface{}{
			"domain":    domain,
			"total":     total,
			"requested": requested,
			"target":    remaining,
		})
		if p.onTarget != nil {
			p.onTarget(total, remaining)
		}

		for page := 0; remaining > 0; page++ {
			count := min(PageSize, remaining)
			offset := page * PageSize

			batch, err := p.lister.WallGet(ctx, domain, count, offset)
			if err != nil {
				yield(nil, fmt.Errorf("failed to fetch posts %d-%d of %s: %w", offset, offset+count, domain, err))
				return
			}

			p.logger.DebugWithFields("Fetched batch", map[string]interface{}{
				"domain": domain,
				"offset": offset,
				"count":  count,
				"items":  len(batch.Items),
			})

			if !yield(batch.Items, nil) {
				return
			}
			remaining -= count
		}
	}
}
