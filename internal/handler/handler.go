// Package handler exposes the aggregated statistics over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/naka-gawa/servicedesk-stats/internal/domain"
)

// fetchErrorMessage is the only detail callers get when the source fails.
const fetchErrorMessage = "Issue fetching data..."

// Service is what the handlers need from the use case layer.
type Service interface {
	Dataset(ctx context.Context) (*domain.Dataset, error)
	TypePercentages(ctx context.Context) (domain.TypePercentages, error)
	Aggregate(ctx context.Context) (*domain.Summary, error)
}

// Handler serves the statistics endpoints.
type Handler struct {
	service Service
	logger  *log.Logger
}

// New creates a Handler.
func New(service Service, logger *log.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Routes registers every endpoint and wraps them in the request logger.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/api/data", h.GetData)
	mux.HandleFunc("/api/type-of-issues-percentage", h.GetTypePercentages)
	mux.HandleFunc("/api/summary", h.GetSummary)
	return withRequestLogging(mux, h.logger)
}

// Health reports that the server is up. It does not touch the data source.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GetData returns the remote payload byte for byte.
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	dataset, err := h.service.Dataset(r.Context())
	if err != nil {
		h.fetchFailed(w, r, err)
		return
	}
	if len(dataset.Raw) == 0 {
		writeJSON(w, http.StatusOK, dataset)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dataset.Raw)
}

// GetTypePercentages returns the problem/questions/tasks percentages.
func (h *Handler) GetTypePercentages(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	percentages, err := h.service.TypePercentages(r.Context())
	if err != nil {
		h.fetchFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, percentages)
}

// GetSummary returns all four statistics.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	summary, err := h.service.Aggregate(r.Context())
	if err != nil {
		h.fetchFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) fetchFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	writeError(w, http.StatusInternalServerError, fetchErrorMessage)
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
