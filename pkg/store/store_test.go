package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vkarchive/pkg/errors"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/models"
)

func openTestStore(t *testing.T, log logger.Logger) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), FileName), log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePost() models.Post {
	return models.Post{
		ID:   101,
		Text: "first post",
		Attachments: []models.Attachment{
			models.Photo{URL: "https://img/1.jpg"},
			models.Video{URL: "https://player/1"},
			models.Audio{OwnerID: 2, AudioID: 3},
			models.Photo{URL: "https://img/2.jpg"},
		},
	}
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, logger.NewNopLogger())

	res, err := s.Insert(ctx, samplePost())
	require.NoError(t, err)
	assert.Equal(t, Inserted, res)

	got, err := s.Get(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "first post", got.Text)
	assert.Equal(t, []models.Attachment{
		models.Photo{URL: "https://img/1.jpg"},
		models.Photo{URL: "https://img/2.jpg"},
		models.Audio{OwnerID: 2, AudioID: 3},
		models.Video{URL: "https://player/1"},
	}, got.Attachments)
}

func TestInsertDuplicateKeepsFirstRow(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger()
	s := openTestStore(t, log)

	_, err := s.Insert(ctx, samplePost())
	require.NoError(t, err)

	changed := samplePost()
	changed.Text = "edited later"
	res, err := s.Insert(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, res)
	assert.True(t, log.HasMessage("Post 101 is already processed"))

	got, err := s.Get(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "first post", got.Text)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestJSONColumns(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, logger.NewNopLogger())

	_, err := s.Insert(ctx, samplePost())
	require.NoError(t, err)
	_, err = s.Insert(ctx, models.Post{ID: 102, Text: "bare", Attachments: []models.Attachment{}})
	require.NoError(t, err)

	var photos, audios, videos string
	row := s.db.QueryRowContext(ctx, `SELECT photos, audios, videos FROM posts WHERE id = 101`)
	require.NoError(t, row.Scan(&photos, &audios, &videos))
	assert.JSONEq(t, `[{"type":"photo","url":"https://img/1.jpg"},{"type":"photo","url":"https://img/2.jpg"}]`, photos)
	assert.JSONEq(t, `[{"type":"audio","id":3,"owner_id":2}]`, audios)
	assert.JSONEq(t, `[{"type":"video","url":"https://player/1"}]`, videos)

	row = s.db.QueryRowContext(ctx, `SELECT photos, audios, videos FROM posts WHERE id = 102`)
	require.NoError(t, row.Scan(&photos, &audios, &videos))
	assert.Equal(t, "[]", photos)
	assert.Equal(t, "[]", audios)
	assert.Equal(t, "[]", videos)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t, logger.NewNopLogger())

	_, err := s.Get(context.Background(), 999)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestIDsAndCount(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, logger.NewNopLogger())

	for _, id := range []int64{5, 9, 7} {
		_, err := s.Insert(ctx, models.Post{ID: id})
		require.NoError(t, err)
	}

	ids, err := s.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 7, 5}, ids)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), FileName)

	s, err := Open(ctx, path, logger.NewNopLogger())
	require.NoError(t, err)
	_, err = s.Insert(ctx, samplePost())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, logger.NewNopLogger())
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Insert(ctx, samplePost())
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, res)
	assert.Equal(t, path, s.Path())
}

func TestDrop(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, logger.NewNopLogger())

	_, err := s.Insert(ctx, samplePost())
	require.NoError(t, err)
	require.NoError(t, s.Drop(ctx))

	_, err = s.Count(ctx)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStorage))
}

func TestEncodeRejectsForeignAttachment(t *testing.T) {
	_, _, _, err := encodeAttachments(models.Post{ID: 1, Attachments: []models.Attachment{nil}})
	assert.Error(t, err)
	assert.Equal(t, "already_exists", AlreadyExists.String())
}
