package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/adapters/memory"
	"github.com/aretw0/jotter/pkg/adapters/remote"
	"github.com/aretw0/jotter/pkg/core"
)

const samplePosts = `[
	{"userId": 1, "id": 1, "title": "first", "body": "one"},
	{"userId": 1, "id": 2, "title": "second", "body": "two"}
]`

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePosts))
	})

	records, err := remote.NewClient(remote.Config{URL: srv.URL}).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, core.RemoteNote{UserID: 1, ID: 1, Title: "first", Body: "one"}, records[0])
	assert.Equal(t, int64(2), records[1].ID)
}

func TestClient_StatusError(t *testing.T) {
	var calls atomic.Int32
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := remote.NewClient(remote.Config{URL: srv.URL, Retries: 3}).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Request failed with status 404", err.Error())

	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.Code)
	assert.Equal(t, int32(1), calls.Load(), "4xx is not retried")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(samplePosts))
	})

	records, err := remote.NewClient(remote.Config{URL: srv.URL, Retries: 2}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := remote.NewClient(remote.Config{URL: srv.URL}).Fetch(context.Background())
	assert.EqualError(t, err, "Request failed with status 500")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_BadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object", `{"not":"an array"}`},
		{"null", `null`},
		{"trailing data", samplePosts + ` trailing-garbage`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := remote.NewClient(remote.Config{URL: srv.URL}).Fetch(context.Background())
			assert.ErrorContains(t, err, "failed to decode response")
		})
	}
}

func TestClient_EmptyArray(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	records, err := remote.NewClient(remote.Config{URL: srv.URL}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_BadPayloadKeepsStoreNotes(t *testing.T) {
	var body atomic.Value
	body.Store(samplePosts)
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body.Load().(string)))
	})

	ctx := context.Background()
	store := core.NewStore(memory.NewStorage(), remote.NewClient(remote.Config{URL: srv.URL}))
	require.NoError(t, store.Hydrate(ctx))
	defer store.Close(ctx)

	store.Add("mine", "")
	require.NoError(t, store.Refresh(ctx))
	before := store.Notes()
	require.Len(t, before, 3)

	for _, bad := range []string{`null`, samplePosts + ` trailing-garbage`} {
		body.Store(bad)
		require.Error(t, store.Refresh(ctx))

		state := store.Snapshot()
		assert.Equal(t, before, state.Notes)
		assert.Contains(t, state.Error, "failed to decode response")
		assert.False(t, state.Loading)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	client := remote.NewClient(remote.Config{URL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Fetch(context.Background())
	assert.Error(t, err)
}

func TestClient_DefaultURL(t *testing.T) {
	assert.Equal(t, remote.DefaultURL, remote.NewClient(remote.Config{}).URL())
}

func TestClient_RefreshesStore(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePosts))
	})

	ctx := context.Background()
	store := core.NewStore(memory.NewStorage(), remote.NewClient(remote.Config{URL: srv.URL}))
	require.NoError(t, store.Hydrate(ctx))
	defer store.Close(ctx)

	local := store.Add("mine", "")
	require.NoError(t, store.Refresh(ctx))

	notes := store.Notes()
	require.Len(t, notes, 3)
	assert.Equal(t, local, notes[0])
	assert.Equal(t, "first", notes[1].Title)
	assert.False(t, notes[1].IsLocal)
	assert.Empty(t, store.Snapshot().Error)
}
