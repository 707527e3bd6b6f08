package vk

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMethodURL(t *testing.T) {
	params := url.Values{"domain": {"apiclub"}, "count": {"1"}}

	assert.Equal(t, "https://api.vk.com/method/wall.get?count=1&domain=apiclub", BuildMethodURL(BaseURL, MethodWallGet, params))
	assert.Equal(t, "http://127.0.0.1:8080/users.get?", BuildMethodURL("http://127.0.0.1:8080/", MethodUsersGet, url.Values{}))
}

func TestVideoKey(t *testing.T) {
	tests := []struct {
		name      string
		owner     int64
		id        int64
		accessKey string
		want      string
	}{
		{"with access key", -1, 456239017, "e6bfa0ce", "-1_456239017_e6bfa0ce"},
		{"without access key", 1, 2, "", "1_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VideoKey(tt.owner, tt.id, tt.accessKey))
		})
	}
}

func TestTopicMatcher(t *testing.T) {
	text := "see https://vk.com/topic-1_100 and https://vk.com/topic-1_200, " +
		"again https://vk.com/topic-1_100, foreign https://vk.com/topic-2_300"

	own := NewTopicMatcher(-1)
	assert.Equal(t, []int64{100, 200}, own.Links(text))
	assert.Empty(t, own.Links("no links here"))
	assert.Equal(t, []int64{300}, NewTopicMatcher(-2).Links(text))
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/apiclub", "https://vk.com/apiclub"},
		{"page-1_77", "https://vk.com/page-1_77"},
		{"https://example.com/x", "https://example.com/x"},
		{"#anchor", "#anchor"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, AbsoluteURL(tt.href))
		})
	}
}
