package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/shortlyhq/shortly/pkg/core/domain"
	"github.com/shortlyhq/shortly/pkg/ports"
)

type HTTPHandler struct {
	service ports.LinkService
	baseURL string
}

func NewHTTPHandler(service ports.LinkService, baseURL string) *HTTPHandler {
	return &HTTPHandler{service: service, baseURL: baseURL}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	OriginalURL string `json:"original_url"`
}

// UpdateLinkRequest payload
type UpdateLinkRequest struct {
	OriginalURL string `json:"original_url"`
}

// Create shortens a URL. Authentication is optional: anonymous callers get a
// working link that nobody, themselves included, can later update or delete.
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OriginalURL == "" {
		writeError(w, http.StatusBadRequest, "original_url is required")
		return
	}

	link, err := h.service.Shorten(r.Context(), req.OriginalURL, OwnerID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "URL shortened successfully",
		"shortUrl": h.baseURL + "/" + link.ShortCode,
	})
}

// Redirect resolves a short code to its original URL and counts the click.
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "short code missing")
		return
	}

	link, err := h.service.Resolve(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

// List returns the caller's active links, most recently updated first.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := OwnerID(r.Context())
	if owner == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	links, err := h.service.ListForOwner(r.Context(), *owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(links)
}

// Update points an existing short code at a new original URL.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OriginalURL == "" {
		writeError(w, http.StatusBadRequest, "original_url is required")
		return
	}

	link, err := h.service.UpdateOriginalURL(r.Context(), code, req.OriginalURL, OwnerID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message":    "URL updated successfully",
		"updatedUrl": link.OriginalURL,
		"shortUrl":   h.baseURL + "/" + link.ShortCode,
	})
}

// Delete soft-deletes a link.
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")

	if err := h.service.Delete(r.Context(), code, OwnerID(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError translates the service error taxonomy to status codes.
// Anything outside the taxonomy is a storage or systemic fault; its detail
// stays out of the response body.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "link not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "you do not have permission to modify this link")
	default:
		// Includes domain.ErrCodeSpaceExhausted: an operational condition
		// worth alerting on, never a caller error.
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
