package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/jotter"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to add")
	adapter := flag.String("adapter", jotter.AdapterFS, "Storage adapter (fs, sqlite, memory)")
	keep := flag.Bool("keep", false, "Keep the benchmark data after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "jotter_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	uri := benchDir
	if *adapter == jotter.AdapterSQLite {
		uri = filepath.Join(benchDir, "bench.db")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	open := func() *jotter.Notebook {
		nb, err := jotter.New(ctx, uri,
			jotter.WithAdapter(*adapter),
			jotter.WithLogger(logger),
			jotter.WithOffline(true),
		)
		if err != nil {
			panic(err)
		}
		return nb
	}

	// Run 1: every Add schedules a full snapshot write.
	fmt.Printf("Adding %d notes with the %s adapter...\n", *count, *adapter)
	nb := open()
	startAdd := time.Now()
	for i := 0; i < *count; i++ {
		nb.Add(fmt.Sprintf("Note %d", i), "benchmark body")
	}
	addDuration := time.Since(startAdd)

	startFlush := time.Now()
	if err := nb.Close(ctx); err != nil {
		panic(err)
	}
	flushDuration := time.Since(startFlush)

	// Run 2: a fresh process hydrating the final snapshot.
	startHydrate := time.Now()
	nb2 := open()
	hydrateDuration := time.Since(startHydrate)
	loaded := len(nb2.Notes())
	_ = nb2.Close(ctx)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes, %s):\n", *count, *adapter)
	fmt.Printf("  Add:     %v\n", addDuration)
	fmt.Printf("  Flush:   %v\n", flushDuration)
	fmt.Printf("  Hydrate: %v (items: %d)\n", hydrateDuration, loaded)
	fmt.Printf("--------------------------------------------------\n")
}
