/**
 * @description
 * HTTP handlers for the default-subscription catalog.
 */
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/smartysub/tracker-service/internal/domain"
)

// Catalog defines the store operations the catalog handlers need.
type Catalog interface {
	ListDefaultSubscriptions(ctx context.Context) ([]domain.DefaultSubscription, error)
	CreateDefaultSubscription(ctx context.Context, entry *domain.DefaultSubscription) (*domain.DefaultSubscription, error)
}

func (h *Handler) handleListDefaultSubscriptions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.ListDefaultSubscriptions(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []domain.DefaultSubscription{}
	}
	respondWithJSON(w, http.StatusOK, entries)
}

type createCatalogEntryRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	LogoURL  string `json:"logo_url"`
}

func (h *Handler) handleCreateDefaultSubscription(w http.ResponseWriter, r *http.Request) {
	var req createCatalogEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !domain.ValidCategory(req.Category) {
		req.Category = domain.CategoryOther
	}

	entry, err := h.catalog.CreateDefaultSubscription(r.Context(), &domain.DefaultSubscription{
		Name:     req.Name,
		Category: req.Category,
		LogoURL:  req.LogoURL,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, entry)
}
