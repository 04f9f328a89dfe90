package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/adampisula/musicdl-server/apperr"
	"github.com/adampisula/musicdl-server/logger"
	"github.com/adampisula/musicdl-server/model"
	"github.com/adampisula/musicdl-server/service"
)

// TrackHandler exposes the track service over HTTP, translating query/body
// fields into service calls and domain failures into status codes.
type TrackHandler struct {
	track *service.TrackService
}

// NewTrackHandler creates the handler set for the track routes.
func NewTrackHandler(track *service.TrackService) *TrackHandler {
	return &TrackHandler{track: track}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"data": data}); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var downloadErr *apperr.DownloadError
	var upstreamErr *apperr.UpstreamError
	switch {
	case errors.Is(err, apperr.ErrUnsupportedURL):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrTrackNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrSourceMissing):
		status = http.StatusInternalServerError
	case errors.As(err, &downloadErr), errors.As(err, &upstreamErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
}

// requireURLParam validates and returns the url query parameter.
func requireURLParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeBadRequest(w, "missing required query parameter: url")
		return "", false
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		writeBadRequest(w, "url must be a valid URI")
		return "", false
	}
	return rawURL, true
}

// DetermineAction handles GET /track/action.
func (h *TrackHandler) DetermineAction(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := requireURLParam(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]model.Action{
		"action": h.track.DetermineAction(rawURL),
	})
}

// GetMetadata handles GET /track/metadata.
func (h *TrackHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := requireURLParam(w, r)
	if !ok {
		return
	}

	result, err := h.track.GetMetadata(r.Context(), rawURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetAlternatives handles GET /track/alternatives.
func (h *TrackHandler) GetAlternatives(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := requireURLParam(w, r)
	if !ok {
		return
	}
	preferExtended := strings.EqualFold(r.URL.Query().Get("prefer_extended"), "true")

	links, err := h.track.GetAlternatives(r.Context(), rawURL, preferExtended)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, links)
}

// GetDownloadURL handles GET /track/download-url.
func (h *TrackHandler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := requireURLParam(w, r)
	if !ok {
		return
	}

	downloadURL, err := h.track.GetDownloadURL(r.Context(), rawURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"download_url": downloadURL})
}

type fetchRequest struct {
	Source struct {
		SpotifyURL string `json:"spotify_url"`
		YoutubeURL string `json:"youtube_url"`
	} `json:"source"`
	Metadata struct {
		Artists         []string `json:"artists"`
		Title           string   `json:"title"`
		IsRemix         bool     `json:"is_remix"`
		DurationSeconds int      `json:"duration_seconds"`
	} `json:"metadata"`
}

func (r *fetchRequest) validate() error {
	if r.Source.YoutubeURL == "" {
		return errors.New("source.youtube_url is required")
	}
	if len(r.Metadata.Artists) == 0 {
		return errors.New("metadata.artists is required")
	}
	if r.Metadata.Title == "" {
		return errors.New("metadata.title is required")
	}
	if r.Metadata.DurationSeconds <= 0 {
		return errors.New("metadata.duration_seconds must be positive")
	}
	return nil
}

// Fetch handles POST /track/fetch.
func (h *TrackHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	source := service.FetchSource{
		SpotifyURL: req.Source.SpotifyURL,
		YoutubeURL: req.Source.YoutubeURL,
	}
	metadata := model.TrackMetadata{
		Artists:         req.Metadata.Artists,
		Title:           req.Metadata.Title,
		IsRemix:         req.Metadata.IsRemix,
		DurationSeconds: req.Metadata.DurationSeconds,
	}

	track, err := h.track.Fetch(r.Context(), source, metadata)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, track)
}
