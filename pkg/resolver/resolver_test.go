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

// fakeVideos answers video lookups from a map keyed by video key
type fakeVideos struct {
	players map[string]string
	err     error
	keys    []string
}

func (f *fakeVideos) VideoGet(ctx context.Context, key string) ([]vk.Video, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	player, ok := f.players[key]
	if !ok {
		return []vk.Video{}, nil
	}
	return []vk.Video{{Player: player}}, nil
}

func photo(sizes ...vk.PhotoSize) vk.Attachment {
	return vk.Attachment{Type: vk.AttachmentPhoto, Photo: &vk.Photo{ID: 1, OwnerID: -1, Sizes: sizes}}
}

func video(owner, id int64, accessKey string) vk.Attachment {
	return vk.Attachment{Type: vk.AttachmentVideo, Video: &vk.Video{ID: id, OwnerID: owner, AccessKey: accessKey}}
}

func TestResolvePhoto(t *testing.T) {
	r := New(&fakeVideos{}, logger.NewTestLogger())

	tests := []struct {
		name    string
		att     vk.Attachment
		want    models.Attachment
		wantErr error
	}{
		{
			name: "largest height wins",
			att: photo(
				vk.PhotoSize{URL: "s", Height: 75},
				vk.PhotoSize{URL: "x", Height: 604},
				vk.PhotoSize{URL: "m", Height: 130},
			),
			want: models.Photo{URL: "x"},
		},
		{
			name: "first of equal heights",
			att: photo(
				vk.PhotoSize{URL: "a", Height: 800},
				vk.PhotoSize{URL: "b", Height: 800},
			),
			want: models.Photo{URL: "a"},
		},
		{
			name:    "no sizes",
			att:     photo(),
			wantErr: ErrUnresolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.att)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAudio(t *testing.T) {
	r := New(&fakeVideos{}, logger.NewTestLogger())

	got, err := r.Resolve(context.Background(), vk.Attachment{
		Type:  vk.AttachmentAudio,
		Audio: &vk.Audio{ID: 456, OwnerID: 2, URL: "https://ignored"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Audio{OwnerID: 2, AudioID: 456}, got)
	assert.Equal(t, models.KindAudio, got.Kind())
}

func TestResolveVideo(t *testing.T) {
	videos := &fakeVideos{players: map[string]string{"-1_10_key": "https://vk.com/video_ext.php?oid=-1&id=10"}}
	r := New(videos, logger.NewTestLogger())

	got, err := r.Resolve(context.Background(), video(-1, 10, "key"))
	require.NoError(t, err)
	assert.Equal(t, models.Video{URL: "https://vk.com/video_ext.php?oid=-1&id=10"}, got)
	assert.Equal(t, []string{"-1_10_key"}, videos.keys)

	t.Run("empty lookup is unresolved", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), video(-1, 11, ""))
		assert.ErrorIs(t, err, ErrUnresolved)
	})

	t.Run("access denied is unresolved", func(t *testing.T) {
		denied := New(&fakeVideos{err: errors.New(errors.ErrorTypeAccessDenied, 15, "video.get: access denied")}, logger.NewTestLogger())
		_, err := denied.Resolve(context.Background(), video(-1, 12, ""))
		assert.ErrorIs(t, err, ErrUnresolved)
	})

	t.Run("transport failure is fatal", func(t *testing.T) {
		broken := New(&fakeVideos{err: errors.New(errors.ErrorTypeNetwork, 0, "connection reset")}, logger.NewTestLogger())
		_, err := broken.Resolve(context.Background(), video(-1, 13, ""))
		require.Error(t, err)
		assert.False(t, IsSoft(err))
		assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	})
}

func TestResolveUnknownKind(t *testing.T) {
	log := logger.NewTestLogger()
	r := New(&fakeVideos{}, log)

	for _, att := range []vk.Attachment{
		{Type: "poll"},
		{Type: "link"},
		{Type: vk.AttachmentPhoto},
		{Type: vk.AttachmentVideo},
	} {
		_, err := r.Resolve(context.Background(), att)
		assert.ErrorIs(t, err, ErrUnknownKind, att.Type)
	}
	assert.Len(t, log.GetMessagesByLevel("DEBUG"), 4)
}
