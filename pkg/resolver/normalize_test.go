package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vkarchive/pkg/errors"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/models"
	"vkarchive/pkg/vk"
)

func TestNormalizeWithoutAttachments(t *testing.T) {
	n := NewNormalizer(New(&fakeVideos{}, logger.NewNopLogger()))

	post, err := n.Normalize(context.Background(), vk.Post{ID: 7, Text: "just text"})
	require.NoError(t, err)

	assert.Equal(t, int64(7), post.ID)
	assert.Equal(t, "just text", post.Text)
	assert.NotNil(t, post.Attachments)
	assert.Empty(t, post.Attachments)
}

func TestNormalizeDropsSoftFailuresKeepingOrder(t *testing.T) {
	videos := &fakeVideos{players: map[string]string{"-1_2": "https://player/2"}}
	n := NewNormalizer(New(videos, logger.NewNopLogger()))

	raw := vk.Post{
		ID:   42,
		Text: "mixed",
		Attachments: []vk.Attachment{
			photo(vk.PhotoSize{URL: "p1", Height: 10}),
			video(-1, 1, ""),
			{Type: "poll"},
			{Type: vk.AttachmentAudio, Audio: &vk.Audio{ID: 5, OwnerID: 3}},
			video(-1, 2, ""),
			photo(),
			photo(vk.PhotoSize{URL: "p2", Height: 20}),
		},
	}

	post, err := n.Normalize(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, []models.Attachment{
		models.Photo{URL: "p1"},
		models.Audio{OwnerID: 3, AudioID: 5},
		models.Video{URL: "https://player/2"},
		models.Photo{URL: "p2"},
	}, post.Attachments)
	assert.Equal(t, []models.Photo{{URL: "p1"}, {URL: "p2"}}, post.Photos())
}

func TestNormalizeFatalLookup(t *testing.T) {
	videos := &fakeVideos{err: errors.New(errors.ErrorTypeAuth, 5, "video.get: invalid token")}
	n := NewNormalizer(New(videos, logger.NewNopLogger()))

	_, err := n.Normalize(context.Background(), vk.Post{ID: 1, Attachments: []vk.Attachment{video(-1, 1, "")}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))
}
