package models

import (
	"fmt"
	"regexp"
	"strings"

	"vkarchive/pkg/errors"
)

// Kind is the media category of an attachment and the name of its
// directory under a page's cache tree.
type Kind string

const (
	KindPhoto Kind = "photos"
	KindAudio Kind = "audios"
	KindVideo Kind = "videos"
	KindWiki  Kind = "wikis"
)

// MediaKinds lists the kinds carried by post attachments, in archive order.
var MediaKinds = []Kind{KindPhoto, KindAudio, KindVideo}

// Attachment is a resolved media reference. The set of implementations is
// closed: Photo, Audio and Video.
type Attachment interface {
	Kind() Kind
	attachment()
}

// Photo is a photo resolved to its largest size variant
type Photo struct {
	URL string
}

// Audio carries only identifiers; its stream URL is looked up at archive time
type Audio struct {
	OwnerID int64
	AudioID int64
}

// Video is a video resolved to a playable URL
type Video struct {
	URL string
}

func (Photo) Kind() Kind { return KindPhoto }
func (Audio) Kind() Kind { return KindAudio }
func (Video) Kind() Kind { return KindVideo }

func (Photo) attachment() {}
func (Audio) attachment() {}
func (Video) attachment() {}

// Locator returns the "owner_id" composite used by audio lookups
func (a Audio) Locator() string {
	return fmt.Sprintf("%d_%d", a.OwnerID, a.AudioID)
}

// Post is a normalized wall post
type Post struct {
	ID          int64
	Text        string
	Attachments []Attachment
}

// Photos returns the photo attachments in original order
func (p Post) Photos() []Photo {
	var out []Photo
	for _, a := range p.Attachments {
		if v, ok := a.(Photo); ok {
			out = append(out, v)
		}
	}
	return out
}

// Audios returns the audio attachments in original order
func (p Post) Audios() []Audio {
	var out []Audio
	for _, a := range p.Attachments {
		if v, ok := a.(Audio); ok {
			out = append(out, v)
		}
	}
	return out
}

// Videos returns the video attachments in original order
func (p Post) Videos() []Video {
	var out []Video
	for _, a := range p.Attachments {
		if v, ok := a.(Video); ok {
			out = append(out, v)
		}
	}
	return out
}

// CountByKind returns how many attachments of kind the post carries
func (p Post) CountByKind(kind Kind) int {
	n := 0
	for _, a := range p.Attachments {
		if a.Kind() == kind {
			n++
		}
	}
	return n
}

// PageIdentity is a validated page handle plus its resolved numeric id.
// OwnerID is positive for a user and negative for a community.
type PageIdentity struct {
	ScreenName string
	OwnerID    int64
}

func (p PageIdentity) String() string {
	return fmt.Sprintf("%s(%d)", p.ScreenName, p.OwnerID)
}

// IsCommunity reports whether the page belongs to a group, public page or event
func (p PageIdentity) IsCommunity() bool {
	return p.OwnerID < 0
}

var screenNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{4,100}$`)

// ParseScreenName extracts the page handle from a user-supplied URL.
// The handle is the last path segment and must match ^[A-Za-z0-9_]{4,100}$.
func ParseScreenName(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	trimmed = strings.TrimRight(trimmed, "/")
	name := trimmed[strings.LastIndex(trimmed, "/")+1:]

	if !screenNamePattern.MatchString(name) {
		return "", errors.New(errors.ErrorTypeInput, 0, "invalid page URL %q: handle must be 4-100 letters, digits or underscores", rawURL)
	}
	return name, nil
}
