package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adampisula/musicdl-server/apperr"
)

func TestSpotifyProvider_IsURLSupported(t *testing.T) {
	p := NewSpotifyProvider("id", "secret")

	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{
			name:     "track URL",
			url:      "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT",
			expected: true,
		},
		{
			name:     "track URL over http",
			url:      "http://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT",
			expected: true,
		},
		{
			name:     "album URL",
			url:      "https://open.spotify.com/album/6QaVfG1pHYl1z15ZxkvVDW",
			expected: false,
		},
		{
			name:     "youtube URL",
			url:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: false,
		},
		{
			name:     "empty string",
			url:      "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsURLSupported(tt.url); got != tt.expected {
				t.Errorf("IsURLSupported(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestSpotifyProvider_GetProviderID(t *testing.T) {
	p := NewSpotifyProvider("id", "secret")

	id, err := p.GetProviderID("https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT?si=xyz")
	if err != nil {
		t.Fatalf("GetProviderID() error = %v", err)
	}
	if id != "4cOdK2wGLETKBW3PvgPWqT" {
		t.Errorf("GetProviderID() = %q, want 4cOdK2wGLETKBW3PvgPWqT", id)
	}

	if _, err := p.GetProviderID("https://example.com"); !errors.Is(err, apperr.ErrUnsupportedURL) {
		t.Errorf("GetProviderID() error = %v, want ErrUnsupportedURL", err)
	}
}

// newSpotifyTestServer fakes the token and track endpoints, counting calls to
// each.
func newSpotifyTestServer(t *testing.T, authCalls, trackCalls *int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		*authCalls++
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/tracks/", func(w http.ResponseWriter, r *http.Request) {
		*trackCalls++
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name": "Midnight City (Extended Remix)",
			"artists": []map[string]string{
				{"name": "M83"},
				{"name": "Someone Else"},
			},
			"duration_ms": 243500,
		})
	})

	return httptest.NewServer(mux)
}

func TestSpotifyProvider_GetMetadata(t *testing.T) {
	var authCalls, trackCalls int
	server := newSpotifyTestServer(t, &authCalls, &trackCalls)
	defer server.Close()

	p := NewSpotifyProvider("id", "secret")
	p.authURL = server.URL + "/api/token"
	p.apiBaseURL = server.URL

	meta, err := p.GetMetadata(context.Background(), "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT")
	if err != nil {
		t.Fatalf("GetMetadata() error = %v", err)
	}

	if meta.Title != "Midnight City (Extended Remix)" {
		t.Errorf("Title = %q", meta.Title)
	}
	if len(meta.Artists) != 2 || meta.Artists[0] != "M83" {
		t.Errorf("Artists = %v, want [M83 Someone Else] in order", meta.Artists)
	}
	if !meta.IsRemix || !meta.IsExtended {
		t.Errorf("IsRemix = %v, IsExtended = %v, want both true", meta.IsRemix, meta.IsExtended)
	}
	if meta.DurationSeconds != 243 {
		t.Errorf("DurationSeconds = %d, want 243", meta.DurationSeconds)
	}
}

func TestSpotifyProvider_TokenIsCached(t *testing.T) {
	var authCalls, trackCalls int
	server := newSpotifyTestServer(t, &authCalls, &trackCalls)
	defer server.Close()

	p := NewSpotifyProvider("id", "secret")
	p.authURL = server.URL + "/api/token"
	p.apiBaseURL = server.URL

	url := "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT"
	for i := 0; i < 3; i++ {
		if _, err := p.GetMetadata(context.Background(), url); err != nil {
			t.Fatalf("GetMetadata() call %d error = %v", i, err)
		}
	}

	if authCalls != 1 {
		t.Errorf("token endpoint called %d times, want 1 (cached until expiry)", authCalls)
	}
	if trackCalls != 3 {
		t.Errorf("track endpoint called %d times, want 3", trackCalls)
	}
}

func TestSpotifyProvider_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	p := NewSpotifyProvider("id", "secret")
	p.authURL = server.URL + "/api/token"
	p.apiBaseURL = server.URL

	_, err := p.GetMetadata(context.Background(), "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT")

	var upstreamErr *apperr.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("GetMetadata() error = %v, want UpstreamError", err)
	}
	if upstreamErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", upstreamErr.StatusCode)
	}
}
