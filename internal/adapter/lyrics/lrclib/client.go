// Package lrclib fetches song lyrics from the lrclib.net API.
package lrclib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/molebeat/molebeat/internal/ports"
)

// DefaultBaseURL is the public lrclib.net API root.
const DefaultBaseURL = "https://lrclib.net"

// durationTolerance is how far a search result's duration may differ from
// the local track's before the result is rejected.
const durationTolerance = 5

const userAgent = "molebeat/1.0 (https://github.com/molebeat/molebeat)"

// response mirrors the fields of an lrclib record we consume.
type response struct {
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Client is an lrclib.net lyrics provider. Lookups try the exact-match
// endpoint first and fall back to a fuzzy search filtered by duration.
// All failures resolve to empty lyrics rather than errors; only context
// cancellation is reported.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a lyrics client against baseURL (DefaultBaseURL for the
// public instance).
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Fetch looks up lyrics for a track. Returns raw LRC text when synced
// lyrics exist, plain text otherwise, "" when nothing matched.
func (c *Client) Fetch(ctx context.Context, artist, title string, durationSec int) (string, error) {
	if artist == "" || title == "" {
		return "", nil
	}

	if lyrics, err := c.get(ctx, artist, title, durationSec); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Debug("lyrics exact lookup failed",
			slog.String("artist", artist),
			slog.String("title", title),
			slog.String("error", err.Error()))
	} else if lyrics != "" {
		return lyrics, nil
	}

	lyrics, err := c.search(ctx, artist, title, durationSec)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Debug("lyrics search failed",
			slog.String("artist", artist),
			slog.String("title", title),
			slog.String("error", err.Error()))
		return "", nil
	}
	return lyrics, nil
}

// get queries the exact-match endpoint.
func (c *Client) get(ctx context.Context, artist, title string, durationSec int) (string, error) {
	query := url.Values{}
	query.Set("artist_name", artist)
	query.Set("track_name", title)
	if durationSec > 0 {
		query.Set("duration", fmt.Sprintf("%d", durationSec))
	}

	var record response
	if err := c.request(ctx, "/api/get", query, &record); err != nil {
		return "", err
	}
	return pickLyrics(record), nil
}

// search queries the fuzzy endpoint and takes the first result whose
// duration is within tolerance of the local track.
func (c *Client) search(ctx context.Context, artist, title string, durationSec int) (string, error) {
	query := url.Values{}
	query.Set("artist_name", artist)
	query.Set("track_name", title)

	var records []response
	if err := c.request(ctx, "/api/search", query, &records); err != nil {
		return "", err
	}

	for _, record := range records {
		if durationSec > 0 {
			diff := record.Duration - float64(durationSec)
			if diff < -durationTolerance || diff > durationTolerance {
				continue
			}
		}
		if lyrics := pickLyrics(record); lyrics != "" {
			return lyrics, nil
		}
	}
	return "", nil
}

func (c *Client) request(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid lyrics url %q: %w", c.baseURL+path, err)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build lyrics request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("lyrics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("lyrics endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read lyrics response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode lyrics response: %w", err)
	}
	return nil
}

// pickLyrics prefers synced lyrics over plain text.
func pickLyrics(record response) string {
	if record.SyncedLyrics != "" {
		return record.SyncedLyrics
	}
	return record.PlainLyrics
}

// Verify that Client implements the port
var _ ports.LyricsProvider = (*Client)(nil)
