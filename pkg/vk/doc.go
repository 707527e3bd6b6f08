// Package vk is a small client for the VK method API.
//
// Every call goes through Client.call, which waits on the configured rate
// limiter, adds the v and access_token parameters, and unwraps the
// {"response": ...} / {"error": ...} envelope. API error codes are mapped to
// pkg/errors types so callers can tell an inaccessible item (access_denied)
// from a failure that must stop the run (auth, network, rate_limit).
//
// Only the methods the archiver needs are implemented:
//
//	users.get                token smoke test
//	utils.resolveScreenName  page handle to owner id
//	wall.get                 post listing
//	video.get                playable URL for a video attachment
//	audio.getById            stream URL for an audio attachment
//	pages.get                wiki page HTML
package vk
