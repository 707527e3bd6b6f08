package harvest

import (
	"context"

	"vkarchive/internal/downloader"
	"vkarchive/pkg/archive"
	"vkarchive/pkg/paginator"
	"vkarchive/pkg/resolver"
	"vkarchive/pkg/vk"
)

// API is the listing session: every remote call except audio lookups
type API interface {
	UsersGet(ctx context.Context, ids ...string) ([]vk.User, error)
	ResolveScreenName(ctx context.Context, screenName string) (int64, error)
	paginator.Lister
	resolver.VideoLookup
	archive.WikiSource
}

// Deps are the remote collaborators of a Harvester
type Deps struct {
	API API

	// Audios is the archiving session. When nil, API is used if it can
	// look audios up.
	Audios archive.AudioLookup

	Fetcher downloader.MediaDownloader
}
