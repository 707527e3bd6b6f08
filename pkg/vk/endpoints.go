package vk

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	// BaseURL is the root of the method API
	BaseURL = "https://api.vk.com/method"

	// DefaultAPIVersion is sent as the v parameter when none is configured
	DefaultAPIVersion = "5.131"

	// SiteURL is used to make wiki links absolute
	SiteURL = "https://vk.com"

	// MaxWallCount is the largest count wall.get accepts
	MaxWallCount = 100
)

// API method names
const (
	MethodUsersGet          = "users.get"
	MethodResolveScreenName = "utils.resolveScreenName"
	MethodWallGet           = "wall.get"
	MethodVideoGet          = "video.get"
	MethodAudioGetByID      = "audio.getById"
	MethodPagesGet          = "pages.get"
)

// Attachment type tags used by the wall listing
const (
	AttachmentPhoto = "photo"
	AttachmentAudio = "audio"
	AttachmentVideo = "video"
)

// BuildMethodURL constructs the URL for calling method with params
func BuildMethodURL(baseURL, method string, params url.Values) string {
	return fmt.Sprintf("%s/%s?%s", strings.TrimRight(baseURL, "/"), method, params.Encode())
}

// VideoKey builds the owner_video[_accessKey] composite used by video.get
func VideoKey(ownerID, videoID int64, accessKey string) string {
	key := fmt.Sprintf("%d_%d", ownerID, videoID)
	if accessKey != "" {
		key += "_" + accessKey
	}
	return key
}

// TopicMatcher finds https://vk.com/topic<ownerID>_<n> links of one owner
type TopicMatcher struct {
	pattern *regexp.Regexp
}

// NewTopicMatcher compiles the topic link pattern for ownerID
func NewTopicMatcher(ownerID int64) *TopicMatcher {
	return &TopicMatcher{
		pattern: regexp.MustCompile(`https://vk\.com/topic` + regexp.QuoteMeta(strconv.FormatInt(ownerID, 10)) + `_(\d{1,20})`),
	}
}

// Links returns the page ids linked from text, in order of first
// appearance and without duplicates.
func (m *TopicMatcher) Links(text string) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, sub := range m.pattern.FindAllStringSubmatch(text, -1) {
		id, err := strconv.ParseInt(sub[1], 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// AbsoluteURL resolves href against the site root
func AbsoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return href
	}
	base, _ := url.Parse(SiteURL + "/")
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
