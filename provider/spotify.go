package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/adampisula/musicdl-server/apperr"
	"github.com/adampisula/musicdl-server/logger"
	"github.com/adampisula/musicdl-server/model"
)

const (
	spotifyAuthURL    = "https://accounts.spotify.com/api/token"
	spotifyAPIBaseURL = "https://api.spotify.com/v1"
)

var spotifyTrackRegex = regexp.MustCompile(`https?://open\.spotify\.com/track/([a-zA-Z0-9]+)`)

// SpotifyProvider resolves open.spotify.com track links against the Spotify
// Web API. The client-credentials bearer token is cached on the provider and
// refreshed lazily on first use or after its reported expiry.
type SpotifyProvider struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	authURL    string
	apiBaseURL string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewSpotifyProvider creates a Spotify provider with the given API credentials.
func NewSpotifyProvider(clientID, clientSecret string) *SpotifyProvider {
	return &SpotifyProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		authURL:      spotifyAuthURL,
		apiBaseURL:   spotifyAPIBaseURL,
	}
}

// IsURLSupported reports whether the URL is a Spotify track link.
func (p *SpotifyProvider) IsURLSupported(rawURL string) bool {
	return spotifyTrackRegex.MatchString(rawURL)
}

// GetProviderID extracts the Spotify track id from the URL.
func (p *SpotifyProvider) GetProviderID(rawURL string) (string, error) {
	matches := spotifyTrackRegex.FindStringSubmatch(rawURL)
	if matches == nil {
		return "", apperr.ErrUnsupportedURL
	}
	return matches[1], nil
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type spotifyTrackResponse struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	DurationMs int `json:"duration_ms"`
}

// authenticate refreshes the cached client-credentials token if it is absent
// or past its expiry.
func (p *SpotifyProvider) authenticate(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.expiresAt) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(p.clientID + ":" + p.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.accessToken = ""
		p.expiresAt = time.Time{}
		return "", &apperr.UpstreamError{
			Service:    "spotify",
			StatusCode: resp.StatusCode,
			Message:    "failed to refresh access token",
		}
	}

	var tokenResp spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}

	p.accessToken = tokenResp.AccessToken
	p.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	logger.Info("Refreshed Spotify access token",
		zap.Time("expiresAt", p.expiresAt))

	return p.accessToken, nil
}

// GetMetadata fetches authoritative track metadata from the Spotify catalog.
func (p *SpotifyProvider) GetMetadata(ctx context.Context, rawURL string) (model.TrackMetadata, error) {
	id, err := p.GetProviderID(rawURL)
	if err != nil {
		return model.TrackMetadata{}, err
	}

	token, err := p.authenticate(ctx)
	if err != nil {
		return model.TrackMetadata{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+"/tracks/"+id, nil)
	if err != nil {
		return model.TrackMetadata{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return model.TrackMetadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.TrackMetadata{}, &apperr.UpstreamError{
			Service:    "spotify",
			StatusCode: resp.StatusCode,
			Message:    "error fetching track metadata",
		}
	}

	var trackResp spotifyTrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&trackResp); err != nil {
		return model.TrackMetadata{}, err
	}

	artists := make([]string, 0, len(trackResp.Artists))
	for _, a := range trackResp.Artists {
		artists = append(artists, a.Name)
	}

	lowerTitle := strings.ToLower(trackResp.Name)

	return model.TrackMetadata{
		Artists:         artists,
		Title:           trackResp.Name,
		IsRemix:         strings.Contains(lowerTitle, "remix"),
		IsExtended:      strings.Contains(lowerTitle, "extended"),
		DurationSeconds: trackResp.DurationMs / 1000,
	}, nil
}
