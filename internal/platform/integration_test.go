package platform_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/adapters/sqlite"
	"github.com/aretw0/jotter/pkg/core"
)

func setupNotebook(t *testing.T, opts ...platform.Option) (*platform.Notebook, string) {
	t.Helper()
	dataPath := filepath.Join(t.TempDir(), "data")

	nb, err := platform.New(context.Background(), dataPath, opts...)
	if err != nil {
		t.Fatalf("Failed to open notebook: %v", err)
	}
	return nb, dataPath
}

func TestNotebook_PersistsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	nb, dataPath := setupNotebook(t, platform.WithOffline(true))

	note := nb.Add("  Integration  ", "body")
	if note.Title != "Integration" {
		t.Errorf("Expected trimmed title, got %q", note.Title)
	}
	if err := nb.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The snapshot lives in a single file named after the key.
	entries, err := os.ReadDir(dataPath)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 file, got %d", len(entries))
	}

	reopened, err := platform.New(ctx, dataPath, platform.WithOffline(true))
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close(ctx)

	got, ok := reopened.Get(note.ID)
	if !ok {
		t.Fatalf("Note %d not restored", note.ID)
	}
	if got != note {
		t.Errorf("Restored %+v, want %+v", got, note)
	}
}

func TestNotebook_YAMLCodec(t *testing.T) {
	ctx := context.Background()
	nb, _ := setupNotebook(t, platform.WithOffline(true), platform.WithCodec("yaml"), platform.WithStorageKey("yaml-notes"))

	nb.Add("Yaml", "encoded")
	if err := nb.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	raw, err := nb.Storage().Get(ctx, "yaml-notes")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !strings.Contains(raw, "title: Yaml") {
		t.Errorf("Expected YAML snapshot, got:\n%s", raw)
	}
}

func TestNotebook_RefreshFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString("[")
		for i := 1; i <= 30; i++ {
			if i > 1 {
				b.WriteString(",")
			}
			b.WriteString(fmt.Sprintf(`{"userId":1,"id":%d,"title":"post %d","body":"b"}`, i, i))
		}
		b.WriteString("]")
		_, _ = w.Write([]byte(b.String()))
	}))
	defer srv.Close()

	ctx := context.Background()
	nb, _ := setupNotebook(t, platform.WithRemoteURL(srv.URL), platform.WithRemoteTimeout(time.Second))
	defer nb.Close(ctx)

	nb.Add("local", "")
	if err := nb.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	notes := nb.Notes()
	if len(notes) != 1+core.DefaultRemoteLimit {
		t.Fatalf("Expected %d notes, got %d", 1+core.DefaultRemoteLimit, len(notes))
	}
	if !notes[0].IsLocal || notes[1].ID != 1 || notes[len(notes)-1].ID != int64(core.DefaultRemoteLimit) {
		t.Errorf("Unexpected order: first=%+v second=%+v last=%+v", notes[0], notes[1], notes[len(notes)-1])
	}
}

func TestNotebook_RefreshFailureKeepsNotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx := context.Background()
	nb, _ := setupNotebook(t, platform.WithRemoteURL(srv.URL))
	defer nb.Close(ctx)

	nb.Add("survivor", "")
	if err := nb.Refresh(ctx); err == nil {
		t.Fatal("Expected refresh error")
	}

	state := nb.Snapshot()
	if state.Error != "Request failed with status 503" {
		t.Errorf("Unexpected error text %q", state.Error)
	}
	if state.Loading {
		t.Errorf("Loading should be false after failure")
	}
	if len(state.Notes) != 1 {
		t.Errorf("Expected notes untouched, got %d", len(state.Notes))
	}
}

func TestNotebook_CloseKeepsInjectedStorageOpen(t *testing.T) {
	ctx := context.Background()

	injected, err := sqlite.Open(sqlite.Config{Path: filepath.Join(t.TempDir(), "owned.db")})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer injected.Close()
	if err := injected.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	nb, err := platform.New(ctx, "", platform.WithStorage(injected), platform.WithOffline(true))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	nb.Add("kept", "")
	if err := nb.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := injected.Get(ctx, core.DefaultStorageKey); err != nil {
		t.Errorf("Injected storage should stay usable after Close, got: %v", err)
	}
}

func TestNotebook_CloseReleasesBuiltStorage(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "built.db")

	nb, err := platform.New(ctx, dbPath, platform.WithAdapter(platform.AdapterSQLite), platform.WithOffline(true))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := nb.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := nb.Storage().Get(ctx, core.DefaultStorageKey); err == nil || errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected a closed-database error, got: %v", err)
	}
}
