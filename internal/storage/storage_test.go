package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"gametracker/internal/config"
)

var keyPattern = regexp.MustCompile(`^games/([a-z0-9-]+)-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-z0-9]+)?$`)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		filename string
		ext      string
		name     string
	}{
		{"Box Art.PNG", ".png", "box-art"},
		{"Catan (2nd edition).jpg", ".jpg", "catan-2nd-edition"},
		{"../../etc/passwd", ".gif", "passwd"},
		{`C:\Users\me\cover.webp`, ".webp", "cover"},
		{"evil.html", ".png", "evil"},
		{".png", ".png", "image"},
		{"", ".jpg", "image"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			key := ObjectKey(tt.filename, tt.ext)
			m := keyPattern.FindStringSubmatch(key)
			if m == nil {
				t.Fatalf("ObjectKey(%q) = %q, does not match pattern", tt.filename, key)
			}
			if m[1] != tt.name || m[2] != tt.ext {
				t.Errorf("ObjectKey(%q) = %q, want name %q ext %q", tt.filename, key, tt.name, tt.ext)
			}
		})
	}

	if ObjectKey("a.png", ".png") == ObjectKey("a.png", ".png") {
		t.Error("ObjectKey() should be unique per call")
	}
}

func TestImageExtension(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		ok          bool
	}{
		{"image/png", ".png", true},
		{"image/jpeg", ".jpg", true},
		{"image/gif", ".gif", true},
		{"image/webp", ".webp", true},
		{"image/svg+xml", "", false},
		{"text/html; charset=utf-8", "", false},
		{"application/octet-stream", "", false},
	}

	for _, tt := range tests {
		got, ok := ImageExtension(tt.contentType)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ImageExtension(%q) = %q, %v, want %q, %v", tt.contentType, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/uploads/")
	ctx := context.Background()

	url, err := store.Save(ctx, "games/chess-1.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if url != "/uploads/games/chess-1.png" {
		t.Errorf("Save() url = %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "games", "chess-1.png"))
	if err != nil || string(data) != "png-bytes" {
		t.Errorf("stored file = %q, %v", data, err)
	}

	if _, err := store.Save(ctx, "games/chess-1.png", "image/png", strings.NewReader("again")); err == nil {
		t.Error("Save() overwrote an existing file")
	}
	for _, bad := range []string{"../escape.png", "/abs.png", ""} {
		if _, err := store.Save(ctx, bad, "image/png", strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) accepted an unsafe key", bad)
		}
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, config.StorageConfig{Backend: "local", UploadDir: t.TempDir(), UploadBaseURL: "/uploads"})
	if err != nil {
		t.Fatalf("New(local) error = %v", err)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Errorf("New(local) = %T", store)
	}

	if _, err := New(ctx, config.StorageConfig{Backend: "s3"}); err == nil {
		t.Error("New(s3) without bucket should fail")
	}
	if _, err := New(ctx, config.StorageConfig{Backend: "ftp"}); err == nil {
		t.Error("New(ftp) should fail")
	}
}

func TestS3StoreSave(t *testing.T) {
	var mu sync.Mutex
	var method, path, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		mu.Lock()
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := NewS3Store(context.Background(), config.StorageConfig{
		S3Bucket:          "covers",
		S3Region:          "us-east-1",
		S3Endpoint:        srv.URL,
		S3AccessKeyID:     "test",
		S3SecretAccessKey: "secret",
		S3PublicBaseURL:   "https://cdn.example.com",
	})
	if err != nil {
		t.Fatalf("NewS3Store() error = %v", err)
	}

	url, err := store.Save(context.Background(), "games/uno-1.png", "image/png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if url != "https://cdn.example.com/games/uno-1.png" {
		t.Errorf("Save() url = %q", url)
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPut || path != "/covers/games/uno-1.png" || contentType != "image/png" {
		t.Errorf("request = %s %s (%s)", method, path, contentType)
	}
}
