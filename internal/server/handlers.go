package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kvittering/kvittering/internal/listing"
)

// scrapeRequest is the POST /api/scrape body
type scrapeRequest struct {
	URL string `json:"url"`
}

// scrapeResponse is the envelope every scrape answer uses
type scrapeResponse struct {
	Success bool             `json:"success"`
	Data    *listing.Listing `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type platformInfo struct {
	Platform    listing.Platform `json:"platform"`
	DisplayName string           `json:"displayName"`
	Hosts       []string         `json:"hosts"`
	Provider    string           `json:"provider,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// handleScrape extracts the listing at the posted URL
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)

	var req scrapeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Scrape request body too large", "limit", tooLarge.Limit)
			s.writeScrapeError(w, http.StatusRequestEntityTooLarge, "Forespørselen er for stor")
			return
		}
		logger.Warn("Error decoding scrape request", "error", err)
		s.writeScrapeError(w, http.StatusBadRequest, listing.UserMessage(&listing.InvalidInputError{}))
		return
	}

	result, err := s.currentScraper().ScrapeURL(r.Context(), req.URL)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Scraping error", "url", req.URL, "status", status, "error", err)
		} else {
			logger.Info("Rejected scrape request", "url", req.URL, "error", err)
		}
		s.writeScrapeError(w, status, listing.UserMessage(err))
		return
	}

	logger.Info("Scraped listing", "url", req.URL, "platform", result.Platform, "title", result.Title)
	if err := writeJSON(w, http.StatusOK, scrapeResponse{Success: true, Data: &result}); err != nil {
		logger.Error("Error encoding response", "error", err)
	}
}

func (s *Server) writeScrapeError(w http.ResponseWriter, status int, message string) {
	if err := writeJSON(w, status, scrapeResponse{Success: false, Error: message}); err != nil {
		s.logger.Error("Error encoding response", "error", err)
	}
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var invalid *listing.InvalidInputError
	var unsupported *listing.UnsupportedPlatformError
	var fetchErr *listing.FetchError
	switch {
	case errors.As(err, &invalid), errors.As(err, &unsupported):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handlePlatforms lists the detector table and which platforms have a provider
func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	scraper := s.currentScraper()

	serving := make(map[listing.Platform]string)
	for _, provider := range scraper.Registry().GetAll() {
		serving[provider.Platform()] = provider.Name()
	}

	var out []platformInfo
	index := make(map[listing.Platform]int)
	for _, p := range scraper.Detector().Patterns() {
		i, ok := index[p.Platform]
		if !ok {
			info := platformInfo{
				Platform:    p.Platform,
				DisplayName: p.Platform.DisplayName(),
				Hosts:       []string{},
				Provider:    serving[p.Platform],
			}
			out = append(out, info)
			i = len(out) - 1
			index[p.Platform] = i
		}
		out[i].Hosts = append(out[i].Hosts, p.Fragment)
	}
	if out == nil {
		out = []platformInfo{}
	}

	if err := writeJSON(w, http.StatusOK, out); err != nil {
		s.requestLogger(r).Error("Error encoding response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
