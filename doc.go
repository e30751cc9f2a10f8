// Package jotter is the composition root for the jotter notes store.
//
// It wires the notes domain (pkg/core) to a storage adapter and a remote
// source using functional options.
//
// The store keeps an ordered list of notes in memory. Every change is
// written through to the storage in the background, and write failures
// never surface to the caller. A refresh pulls the first records of the
// remote source and places them behind the notes created locally.
//
// Adapters:
//
//   - fs (default): one atomic file per key, with fsnotify-based Watch.
//   - memory: a process-local map.
//   - sqlite: a single kv table through the pure Go modernc driver.
//   - redis: GET/SET/DEL under a key prefix.
//   - s3: one object per key in an S3-compatible bucket.
//
// Usage:
//
//	nb, err := jotter.New(ctx, "./.jotter",
//		jotter.WithAdapter(jotter.AdapterSQLite),
//		jotter.WithLogger(logger),
//	)
//	defer nb.Close(ctx)
//
//	note := nb.Add("Groceries", "milk")
//	_ = nb.Refresh(ctx)
package jotter
