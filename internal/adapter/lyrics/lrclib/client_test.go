package lrclib

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molebeat/molebeat/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(server.URL, 2*time.Second, logger.NewTestLogger())
}

func TestClient_ExactMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/get", r.URL.Path)
		assert.Equal(t, "Rick Astley", r.URL.Query().Get("artist_name"))
		assert.Equal(t, "Never Gonna Give You Up", r.URL.Query().Get("track_name"))
		assert.Equal(t, "213", r.URL.Query().Get("duration"))

		w.Write([]byte(`{"syncedLyrics": "[00:18.00]We're no strangers to love", "plainLyrics": "We're no strangers to love"}`))
	})

	lyrics, err := client.Fetch(context.Background(), "Rick Astley", "Never Gonna Give You Up", 213)
	require.NoError(t, err)
	assert.Equal(t, "[00:18.00]We're no strangers to love", lyrics)
}

func TestClient_PrefersSyncedOverPlain(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"syncedLyrics": "", "plainLyrics": "just the words"}`))
	})

	lyrics, err := client.Fetch(context.Background(), "Artist", "Title", 0)
	require.NoError(t, err)
	assert.Equal(t, "just the words", lyrics)
}

func TestClient_FallsBackToSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get":
			http.NotFound(w, r)
		case "/api/search":
			w.Write([]byte(`[
				{"duration": 500, "syncedLyrics": "[00:01.00]wrong track"},
				{"duration": 182, "syncedLyrics": "[00:01.00]right track"}
			]`))
		}
	})

	lyrics, err := client.Fetch(context.Background(), "Artist", "Title", 180)
	require.NoError(t, err)
	assert.Equal(t, "[00:01.00]right track", lyrics)
}

func TestClient_SearchRejectsDurationMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get":
			http.NotFound(w, r)
		case "/api/search":
			w.Write([]byte(`[{"duration": 300, "syncedLyrics": "[00:01.00]too long"}]`))
		}
	})

	lyrics, err := client.Fetch(context.Background(), "Artist", "Title", 180)
	require.NoError(t, err)
	assert.Equal(t, "", lyrics)
}

func TestClient_FailuresResolveEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	lyrics, err := client.Fetch(context.Background(), "Artist", "Title", 180)
	require.NoError(t, err)
	assert.Equal(t, "", lyrics)
}

func TestClient_EmptyArtistOrTitleSkipsLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	lyrics, err := client.Fetch(context.Background(), "", "Title", 180)
	require.NoError(t, err)
	assert.Equal(t, "", lyrics)
}

func TestClient_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Fetch(ctx, "Artist", "Title", 180)
	assert.ErrorIs(t, err, context.Canceled)
}
