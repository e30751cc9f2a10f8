package fs

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
)

// TestConcurrentSet verifies that readers never observe a torn value
// while writers race on the same key.
func TestConcurrentSet(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage(Config{Path: t.TempDir()})
	if err := storage.Initialize(ctx); err != nil {
		t.Fatalf("failed to init storage: %v", err)
	}

	const writers = 8
	const rounds = 25
	valid := make(map[string]bool)
	for w := 0; w < writers; w++ {
		for r := 0; r < rounds; r++ {
			valid[payload(w, r)] = true
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, writers*rounds*2)

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				if err := storage.Set(ctx, "shared", payload(w, r)); err != nil {
					errs <- err
				}
			}
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < writers*rounds; i++ {
			got, err := storage.Get(ctx, "shared")
			if err != nil {
				continue // not written yet
			}
			if !valid[got] {
				errs <- fmt.Errorf("torn read: %q", got)
				return
			}
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	// No temp files are left behind.
	entries, err := os.ReadDir(storage.Path)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), TempFilePrefix) {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func payload(w, r int) string {
	return strings.Repeat(fmt.Sprintf("[w%d-r%d]", w, r), 512)
}
