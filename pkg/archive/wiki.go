package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"vkarchive/pkg/models"
	"vkarchive/pkg/vk"
)

// archiveWikis snapshots every wiki page linked from the post text
func (a *Archiver) archiveWikis(ctx context.Context, post models.Post) (KindReport, error) {
	ids := a.topics.Links(post.Text)

	return a.archiveKind(ctx, models.KindWiki, post.ID, len(ids), false,
		func(ctx context.Context, i int) (string, error) {
			locator := fmt.Sprintf("%s/topic%d_%d", vk.SiteURL, a.opts.OwnerID, ids[i])

			page, err := a.wikis.PagesGet(ctx, a.opts.OwnerID, ids[i])
			if err != nil {
				return locator, fmt.Errorf("wiki lookup failed: %w", err)
			}

			html, err := RewriteLinks(page.HTML)
			if err != nil {
				return locator, err
			}
			return locator, a.media.Save(strings.NewReader(html), models.KindWiki, post.ID, i)
		})
}

// RewriteLinks makes every link and image source in a wiki page absolute so
// the snapshot can be opened outside the site
func RewriteLinks(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse wiki HTML: %w", err)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		s.SetAttr("href", vk.AbsoluteURL(href))
	})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		s.SetAttr("src", vk.AbsoluteURL(src))
	})

	return doc.Html()
}
