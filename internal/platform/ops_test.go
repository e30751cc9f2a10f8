package platform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/adapters/memory"
	"github.com/aretw0/jotter/pkg/adapters/sqlite"
	"github.com/aretw0/jotter/pkg/core"
)

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("FS Creates Directory", func(t *testing.T) {
		dataPath := filepath.Join(t.TempDir(), "data")

		storage, err := platform.Init(ctx, dataPath)
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}

		fsStorage, ok := storage.(*fs.Storage)
		if !ok {
			t.Fatalf("Expected fs storage, got %T", storage)
		}
		if fsStorage.Path != dataPath {
			t.Errorf("Expected path %s, got %s", dataPath, fsStorage.Path)
		}
		if info, err := os.Stat(dataPath); err != nil || !info.IsDir() {
			t.Errorf("Data directory not created")
		}
	})

	t.Run("FS MustExist Fails When Missing", func(t *testing.T) {
		dataPath := filepath.Join(t.TempDir(), "missing")

		if _, err := platform.Init(ctx, dataPath, platform.WithMustExist(true)); err == nil {
			t.Fatal("Expected error for missing directory")
		}
	})

	t.Run("ForceTemp Re-roots Outside Temp", func(t *testing.T) {
		storage, err := platform.Init(ctx, "jotter-force-temp-case", platform.WithForceTemp(true))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		t.Cleanup(func() { _ = os.RemoveAll(storage.(*fs.Storage).Path) })

		want := filepath.Join(os.TempDir(), platform.DevDirName, "jotter-force-temp-case")
		if got := storage.(*fs.Storage).Path; got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	})

	t.Run("Memory Adapter", func(t *testing.T) {
		storage, err := platform.Init(ctx, "", platform.WithAdapter(platform.AdapterMemory))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if _, ok := storage.(*memory.Storage); !ok {
			t.Errorf("Expected memory storage, got %T", storage)
		}
	})

	t.Run("SQLite Adapter", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "notes.db")
		storage, err := platform.Init(ctx, dbPath, platform.WithAdapter(platform.AdapterSQLite))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		db, ok := storage.(*sqlite.Storage)
		if !ok {
			t.Fatalf("Expected sqlite storage, got %T", storage)
		}
		defer db.Close()

		if _, err := os.Stat(dbPath); err != nil {
			t.Errorf("Database file not created: %v", err)
		}
	})

	t.Run("Injected Storage Wins", func(t *testing.T) {
		injected := memory.NewStorage()
		storage, err := platform.Init(ctx, "ignored", platform.WithAdapter("nope"), platform.WithStorage(injected))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if storage != core.Storage(injected) {
			t.Errorf("Expected injected storage")
		}
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		if _, err := platform.Init(ctx, "", platform.WithAdapter("floppy")); err == nil {
			t.Fatal("Expected error for unknown adapter")
		}
	})
}

func TestNew_UnknownCodec(t *testing.T) {
	_, err := platform.New(context.Background(), "",
		platform.WithAdapter(platform.AdapterMemory),
		platform.WithCodec("xml"),
	)
	if err == nil {
		t.Fatal("Expected error for unknown codec")
	}
}

func TestNew_Offline(t *testing.T) {
	nb, err := platform.New(context.Background(), "",
		platform.WithAdapter(platform.AdapterMemory),
		platform.WithOffline(true),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer nb.Close(context.Background())

	if err := nb.Refresh(context.Background()); !errors.Is(err, core.ErrNoRemote) {
		t.Errorf("Expected ErrNoRemote, got %v", err)
	}
	if _, err := nb.Watch(context.Background(), ""); err == nil {
		t.Errorf("Expected memory storage to reject Watch")
	}
}
