package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"vkarchive/pkg/config"
	"vkarchive/pkg/errors"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/models"
)

// MockClient is a mock media downloader
type MockClient struct {
	downloadError   error
	downloadCounter int32
}

func (m *MockClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	atomic.AddInt32(&m.downloadCounter, 1)
	if m.downloadError != nil {
		return nil, m.downloadError
	}
	return []byte("mock media data"), nil
}

// MockStorage records saved items
type MockStorage struct {
	saved     map[string]string
	saveError error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{saved: make(map[string]string)}
}

func (m *MockStorage) Save(r io.Reader, kind models.Kind, postID int64, ordinal int) error {
	if m.saveError != nil {
		return m.saveError
	}
	data, _ := io.ReadAll(r)
	m.saved[fmt.Sprintf("%s/%d/%d", kind, postID, ordinal)] = string(data)
	return nil
}

func TestRunnerProcess(t *testing.T) {
	client := &MockClient{}
	storage := NewMockStorage()
	runner := NewRunner(client, storage, logger.NewNopLogger())

	for i := 0; i < 3; i++ {
		result := runner.Process(context.Background(), Job{
			URL:     fmt.Sprintf("https://example.com/photo%d.jpg", i),
			Kind:    models.KindPhoto,
			PostID:  10,
			Ordinal: i,
		})
		if !result.Success {
			t.Errorf("Expected job %d to succeed: %v", i, result.Error)
		}
		if result.Size != len("mock media data") {
			t.Errorf("Unexpected size %d", result.Size)
		}
	}

	if len(storage.saved) != 3 {
		t.Errorf("Expected 3 saved items, got %d", len(storage.saved))
	}
	if storage.saved["photos/10/2"] != "mock media data" {
		t.Error("Expected item photos/10/2 to be saved")
	}
}

func TestRunnerWithErrors(t *testing.T) {
	t.Run("download error", func(t *testing.T) {
		runner := NewRunner(&MockClient{downloadError: fmt.Errorf("download error")}, NewMockStorage(), logger.NewNopLogger())
		result := runner.Process(context.Background(), Job{URL: "https://example.com/x", Kind: models.KindVideo})
		if result.Success || result.Error == nil {
			t.Error("Expected download failure")
		}
	})

	t.Run("save error", func(t *testing.T) {
		storage := NewMockStorage()
		storage.saveError = fmt.Errorf("disk full")
		runner := NewRunner(&MockClient{}, storage, logger.NewNopLogger())
		result := runner.Process(context.Background(), Job{URL: "https://example.com/x", Kind: models.KindAudio})
		if result.Success || result.Error == nil {
			t.Error("Expected save failure")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := &MockClient{}
		runner := NewRunner(client, NewMockStorage(), logger.NewNopLogger())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := runner.Process(ctx, Job{URL: "https://example.com/x", Kind: models.KindPhoto})
		if result.Error != context.Canceled {
			t.Errorf("Expected context.Canceled, got %v", result.Error)
		}
		if atomic.LoadInt32(&client.downloadCounter) != 0 {
			t.Error("Expected no download after cancellation")
		}
	})
}

func TestHTTPFetcher(t *testing.T) {
	var userAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/ok.jpg":
			w.Write([]byte("jpeg bytes"))
		case "/big.bin":
			w.Write(make([]byte, 64))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfg := &config.DownloadConfig{Timeout: 5 * time.Second, MaxFileSize: 32}
	fetcher := NewHTTPFetcher(cfg, "test-agent", logger.NewNopLogger())

	data, err := fetcher.Fetch(context.Background(), server.URL+"/ok.jpg")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("Unexpected body %q", data)
	}
	if userAgent.Load() != "test-agent" {
		t.Errorf("Expected User-Agent header, got %v", userAgent.Load())
	}

	tests := []struct {
		path string
		want errors.ErrorType
	}{
		{"/missing", errors.ErrorTypeNotFound},
		{"/forbidden", errors.ErrorTypeAccessDenied},
		{"/broken", errors.ErrorTypeServerError},
		{"/big.bin", errors.ErrorTypeInput},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := fetcher.Fetch(context.Background(), server.URL+tt.path)
			if !errors.IsType(err, tt.want) {
				t.Errorf("Expected %s error, got %v", tt.want, err)
			}
		})
	}
}

func TestHTTPFetcherNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewHTTPFetcher(&config.DownloadConfig{Timeout: time.Second}, "", logger.NewNopLogger())
	_, err := fetcher.Fetch(context.Background(), url)
	if !errors.IsType(err, errors.ErrorTypeNetwork) {
		t.Errorf("Expected network error, got %v", err)
	}
}
