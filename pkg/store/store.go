// Package store persists normalized posts in a per-page SQLite database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"vkarchive/pkg/errors"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/models"

	_ "modernc.org/sqlite"
)

// FileName is the database file inside a page directory
const FileName = "posts.db"

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// goose keeps its configuration in package globals
var gooseMu sync.Mutex

// Result tells whether Insert created a row
type Result int

const (
	Inserted Result = iota
	AlreadyExists
)

func (r Result) String() string {
	if r == AlreadyExists {
		return "already_exists"
	}
	return "inserted"
}

type photoRow struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type audioRow struct {
	Type    string `json:"type"`
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
}

type videoRow struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Store is an open posts database
type Store struct {
	db     *sql.DB
	path   string
	logger logger.Logger
}

// Open opens or creates the database at path and applies migrations
func Open(ctx context.Context, path string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "store")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, fmt.Sprintf("failed to open %s", path))
	}
	// a single connection serialises writers on the file
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db, log, false); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, fmt.Sprintf("failed to run migrations on %s", path))
	}

	log.DebugWithFields("Post store opened", map[string]interface{}{"path": path})
	return &Store{db: db, path: path, logger: log}, nil
}

func migrate(ctx context.Context, db *sql.DB, log logger.Logger, reset bool) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if reset {
		return goose.ResetContext(ctx, db, migrationsDir)
	}
	return goose.UpContext(ctx, db, migrationsDir)
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Insert stores post unless a row with its id exists. A duplicate is not an
// error: it returns AlreadyExists and leaves the stored row untouched.
func (s *Store) Insert(ctx context.Context, post models.Post) (Result, error) {
	photos, audios, videos, err := encodeAttachments(post)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeStorage, fmt.Sprintf("failed to encode post %d", post.ID))
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, text, photos, audios, videos) VALUES (?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		post.ID, post.Text, photos, audios, videos,
	)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeStorage, fmt.Sprintf("failed to insert post %d", post.ID))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeStorage, fmt.Sprintf("failed to insert post %d", post.ID))
	}
	if affected == 0 {
		s.logger.DebugWithFields("Post already stored", map[string]interface{}{"post_id": post.ID})
		return AlreadyExists, nil
	}

	s.logger.DebugWithFields("Post stored", map[string]interface{}{
		"post_id": post.ID,
		"photos":  post.CountByKind(models.KindPhoto),
		"audios":  post.CountByKind(models.KindAudio),
		"videos":  post.CountByKind(models.KindVideo),
	})
	return Inserted, nil
}

// Get loads one post by id
func (s *Store) Get(ctx context.Context, id int64) (models.Post, error) {
	var (
		post                   models.Post
		photos, audios, videos string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, text, photos, audios, videos FROM posts WHERE id = ?`, id,
	).Scan(&post.ID, &post.Text, &photos, &audios, &videos)
	if err == sql.ErrNoRows {
		return models.Post{}, errors.New(errors.ErrorTypeNotFound, 0, "post %d is not stored", id)
	}
	if err != nil {
		return models.Post{}, errors.Wrap(err, errors.ErrorTypeStorage, fmt.Sprintf("failed to load post %d", id))
	}

	post.Attachments, err = decodeAttachments(photos, audios, videos)
	if err != nil {
		return models.Post{}, errors.Wrap(err, errors.ErrorTypeStorage, fmt.Sprintf("failed to decode post %d", id))
	}
	return post, nil
}

// IDs returns the ids of all stored posts, newest first
func (s *Store) IDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM posts ORDER BY id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "failed to list posts")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeStorage, "failed to list posts")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of stored posts
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeStorage, "failed to count posts")
	}
	return n, nil
}

// Drop rolls back every migration, removing the posts table
func (s *Store) Drop(ctx context.Context) error {
	if err := migrate(ctx, s.db, s.logger, true); err != nil {
		return errors.Wrap(err, errors.ErrorTypeStorage, fmt.Sprintf("failed to drop %s", s.path))
	}
	s.logger.InfoWithFields("Posts table dropped", map[string]interface{}{"path": s.path})
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func encodeAttachments(post models.Post) (photos, audios, videos string, err error) {
	photoRows := make([]photoRow, 0)
	audioRows := make([]audioRow, 0)
	videoRows := make([]videoRow, 0)

	for _, att := range post.Attachments {
		switch a := att.(type) {
		case models.Photo:
			photoRows = append(photoRows, photoRow{Type: "photo", URL: a.URL})
		case models.Audio:
			audioRows = append(audioRows, audioRow{Type: "audio", ID: a.AudioID, OwnerID: a.OwnerID})
		case models.Video:
			videoRows = append(videoRows, videoRow{Type: "video", URL: a.URL})
		default:
			return "", "", "", fmt.Errorf("unsupported attachment %T", att)
		}
	}

	p, err := json.Marshal(photoRows)
	if err != nil {
		return "", "", "", err
	}
	a, err := json.Marshal(audioRows)
	if err != nil {
		return "", "", "", err
	}
	v, err := json.Marshal(videoRows)
	if err != nil {
		return "", "", "", err
	}
	return string(p), string(a), string(v), nil
}

// decodeAttachments restores attachments grouped by kind: photos, then
// audios, then videos
func decodeAttachments(photos, audios, videos string) ([]models.Attachment, error) {
	var (
		photoRows []photoRow
		audioRows []audioRow
		videoRows []videoRow
	)
	if err := json.Unmarshal([]byte(photos), &photoRows); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(audios), &audioRows); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(videos), &videoRows); err != nil {
		return nil, err
	}

	out := make([]models.Attachment, 0, len(photoRows)+len(audioRows)+len(videoRows))
	for _, r := range photoRows {
		out = append(out, models.Photo{URL: r.URL})
	}
	for _, r := range audioRows {
		out = append(out, models.Audio{OwnerID: r.OwnerID, AudioID: r.ID})
	}
	for _, r := range videoRows {
		out = append(out, models.Video{URL: r.URL})
	}
	return out, nil
}

// gooseLogger routes migration output to the debug level
type gooseLogger struct {
	logger logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Debug(fmt.Sprintf(format, v...))
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Error(fmt.Sprintf(format, v...))
}
