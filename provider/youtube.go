package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adampisula/musicdl-server/apperr"
	"github.com/adampisula/musicdl-server/logger"
	"github.com/adampisula/musicdl-server/model"
)

const (
	youtubeAPIBaseURL = "https://www.googleapis.com/youtube/v3"

	// categoryRefreshInterval is how long the resolved "Music" video
	// category id stays fresh before the next search re-resolves it.
	categoryRefreshInterval = 24 * time.Hour

	searchMaxResults = 10
)

var youtubeURLRegex = regexp.MustCompile(`^((?:https?:)?//)?((?:www|m)\.)?((?:youtube\.com|youtu\.be))(/(?:[\w\-]+\?v=|embed/|v/)?)([\w\-]+)(\S+)?$`)

// AudioDownloader retrieves the audio behind a video URL into a local
// temporary file. Implemented by the yt-dlp wrapper in the downloader package.
type AudioDownloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// YouTubeProvider classifies YouTube links, downloads their audio through an
// AudioDownloader and searches the YouTube catalog for candidates similar to
// target metadata. It keeps a provider-local, lazily refreshed cache of the
// "Music" video category id.
type YouTubeProvider struct {
	apiKey     string
	regionCode string
	httpClient *http.Client
	apiBaseURL string
	downloader AudioDownloader

	mu                  sync.Mutex
	musicCategoryID     string
	categoryLastRefresh time.Time
}

// NewYouTubeProvider creates a YouTube provider with the given API key and
// region code.
func NewYouTubeProvider(apiKey, regionCode string, downloader AudioDownloader) *YouTubeProvider {
	return &YouTubeProvider{
		apiKey:     apiKey,
		regionCode: regionCode,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiBaseURL: youtubeAPIBaseURL,
		downloader: downloader,
	}
}

// IsURLSupported reports whether the URL is a YouTube video link.
func (p *YouTubeProvider) IsURLSupported(rawURL string) bool {
	return youtubeURLRegex.MatchString(rawURL)
}

// GetProviderID extracts the video id from the URL.
func (p *YouTubeProvider) GetProviderID(rawURL string) (string, error) {
	matches := youtubeURLRegex.FindStringSubmatch(rawURL)
	if matches == nil {
		return "", apperr.ErrUnsupportedURL
	}
	return matches[5], nil
}

// GetMetadata returns placeholder metadata: YouTube has no first-party track
// metadata, so callers treat anything derived from it as suggestions only.
func (p *YouTubeProvider) GetMetadata(ctx context.Context, rawURL string) (model.TrackMetadata, error) {
	return model.TrackMetadata{
		Artists:         []string{""},
		Title:           "",
		IsRemix:         false,
		DurationSeconds: 0,
	}, nil
}

// Download retrieves the audio behind the URL into a local temporary file.
func (p *YouTubeProvider) Download(ctx context.Context, rawURL string) (string, error) {
	return p.downloader.Download(ctx, rawURL)
}

// WatchURL builds the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type youtubeCategoriesResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

func (p *YouTubeProvider) apiGet(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &apperr.UpstreamError{Service: "youtube", StatusCode: resp.StatusCode}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// getDetails fetches the duration of a single video.
func (p *YouTubeProvider) getDetails(ctx context.Context, videoID string) (int, error) {
	params := url.Values{
		"part": {"contentDetails"},
		"id":   {videoID},
	}

	var videosResp youtubeVideosResponse
	if err := p.apiGet(ctx, "/videos", params, &videosResp); err != nil {
		return 0, err
	}
	if len(videosResp.Items) == 0 {
		return 0, fmt.Errorf("no video details for id %s", videoID)
	}

	return parseISO8601Duration(videosResp.Items[0].ContentDetails.Duration)
}

var isoDurationRegex = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISO8601Duration converts a YouTube contentDetails duration such as
// "PT4M13S" to seconds.
func parseISO8601Duration(s string) (int, error) {
	matches := isoDurationRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid ISO 8601 duration %q", s)
	}

	total := 0
	multipliers := []int{86400, 3600, 60, 1}
	for i, m := range matches[1:] {
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, err
		}
		total += n * multipliers[i]
	}
	return total, nil
}

// getMusicCategoryID resolves the id of the "Music" video category, caching
// the value for a day. Concurrent first use may refresh twice; the staleness
// window is harmless.
func (p *YouTubeProvider) getMusicCategoryID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.musicCategoryID != "" && time.Since(p.categoryLastRefresh) <= categoryRefreshInterval {
		return p.musicCategoryID, nil
	}

	params := url.Values{
		"part":       {"snippet"},
		"regionCode": {p.regionCode},
	}

	var categoriesResp youtubeCategoriesResponse
	if err := p.apiGet(ctx, "/videoCategories", params, &categoriesResp); err != nil {
		return "", err
	}

	for _, category := range categoriesResp.Items {
		if category.Snippet.Title == "Music" {
			p.musicCategoryID = category.ID
			p.categoryLastRefresh = time.Now()
			break
		}
	}

	if p.musicCategoryID == "" {
		return "", fmt.Errorf("music video category not found for region %s", p.regionCode)
	}
	return p.musicCategoryID, nil
}

// constructQuery builds the search query from target metadata.
func constructQuery(target model.TrackMetadata, preferExtended bool) string {
	query := target.PrimaryArtist() + " " + target.Title
	if preferExtended {
		query += " extended"
	}
	return query
}

// runSearch executes one search call, fetches every result's duration
// concurrently and returns the candidates scoring above the similarity
// threshold. A single failed detail lookup fails the whole batch; silently
// dropping candidates would skew the ranking.
func (p *YouTubeProvider) runSearch(ctx context.Context, params url.Values, target model.TrackMetadata, preferExtended bool) ([]model.Link, error) {
	logger.Debug("Running YouTube search", zap.String("query", params.Get("q")))

	var searchResp youtubeSearchResponse
	if err := p.apiGet(ctx, "/search", params, &searchResp); err != nil {
		return nil, err
	}

	scored := make([]model.Link, len(searchResp.Items))
	matched := make([]bool, len(searchResp.Items))

	g, gCtx := errgroup.WithContext(ctx)
	for i, item := range searchResp.Items {
		i, item := i, item
		g.Go(func() error {
			duration, err := p.getDetails(gCtx, item.ID.VideoID)
			if err != nil {
				return err
			}

			similarity := calculateSimilarity(target, duration, preferExtended)
			if similarity > similarityThreshold {
				scored[i] = model.Link{
					Link:       WatchURL(item.ID.VideoID),
					Similarity: similarity,
				}
				matched[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]model.Link, 0, len(scored))
	for i, ok := range matched {
		if ok {
			matches = append(matches, scored[i])
		}
	}
	return matches, nil
}

func (p *YouTubeProvider) searchParams(query string) url.Values {
	return url.Values{
		"part":       {"snippet"},
		"maxResults": {strconv.Itoa(searchMaxResults)},
		"order":      {"relevance"},
		"safeSearch": {"none"},
		"type":       {"video"},
		"regionCode": {p.regionCode},
		"q":          {query},
	}
}

// musicSearch searches within the music video category.
func (p *YouTubeProvider) musicSearch(ctx context.Context, target model.TrackMetadata, preferExtended bool) ([]model.Link, error) {
	categoryID, err := p.getMusicCategoryID(ctx)
	if err != nil {
		return nil, err
	}

	params := p.searchParams(constructQuery(target, preferExtended))
	params.Set("videoCategoryId", categoryID)

	return p.runSearch(ctx, params, target, preferExtended)
}

// normalSearch searches without a category scope.
func (p *YouTubeProvider) normalSearch(ctx context.Context, target model.TrackMetadata, preferExtended bool) ([]model.Link, error) {
	params := p.searchParams(constructQuery(target, preferExtended))
	return p.runSearch(ctx, params, target, preferExtended)
}

// Search runs a music-category-scoped search first; a top result above the
// auto-match threshold is returned alone as an exact match. Otherwise an
// unscoped fallback search runs too and both result sets are merged, deduped
// by URL keeping the highest score, and sorted by descending similarity.
func (p *YouTubeProvider) Search(ctx context.Context, target model.TrackMetadata, preferExtended bool) ([]model.Link, error) {
	musicMatches, err := p.musicSearch(ctx, target, preferExtended)
	if err != nil {
		return nil, err
	}

	if best, ok := bestLink(musicMatches); ok && best.Similarity > autoMatchThreshold {
		return []model.Link{best}, nil
	}

	normalMatches, err := p.normalSearch(ctx, target, preferExtended)
	if err != nil {
		return nil, err
	}

	return dedupeLinks(append(musicMatches, normalMatches...)), nil
}

func bestLink(links []model.Link) (model.Link, bool) {
	if len(links) == 0 {
		return model.Link{}, false
	}
	best := links[0]
	for _, l := range links[1:] {
		if l.Similarity > best.Similarity {
			best = l
		}
	}
	return best, true
}
