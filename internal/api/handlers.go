/**
 * @description
 * HTTP handlers for the subscription endpoints. Handlers parse the request,
 * call the service layer and write the JSON response; all routes here are
 * owner-scoped via the authenticated account id.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/smartysub/tracker-service/internal/app"
	"github.com/smartysub/tracker-service/internal/domain"
	"github.com/smartysub/tracker-service/internal/store"
)

// Handler holds the application services the handlers interact with.
type Handler struct {
	subs        app.Service
	users       app.UserService
	catalog     Catalog
	jwtSecret   string
	tokenTTL    time.Duration
	premiumDays int
}

// NewHandler creates a new Handler.
func NewHandler(subs app.Service, users app.UserService, catalog Catalog, jwtSecret string, tokenTTL time.Duration, premiumDays int) *Handler {
	return &Handler{
		subs:        subs,
		users:       users,
		catalog:     catalog,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		premiumDays: premiumDays,
	}
}

const dateLayout = "2006-01-02"

type createSubscriptionRequest struct {
	DefaultSubscriptionID *string         `json:"default_subscription_id"`
	Name                  string          `json:"name"`
	Cost                  decimal.Decimal `json:"cost"`
	StartDate             string          `json:"start_date"`
	RenewalFrequency      string          `json:"renewal_frequency"`
	Category              string          `json:"category"`
	Notes                 string          `json:"notes"`
}

func (h *Handler) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}

	sub, err := h.subs.Create(r.Context(), userID, app.CreateSubscriptionInput{
		DefaultSubscriptionID: req.DefaultSubscriptionID,
		Name:                  req.Name,
		Cost:                  req.Cost,
		StartDate:             startDate,
		RenewalFrequency:      domain.Frequency(req.RenewalFrequency),
		Category:              req.Category,
		Notes:                 req.Notes,
	})
	if err != nil {
		if errors.Is(err, store.ErrCatalogEntryNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, sub)
}

func (h *Handler) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	subs, err := h.subs.List(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}
	respondWithJSON(w, http.StatusOK, subs)
}

func (h *Handler) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	detail, err := h.subs.GetSubscriptionDetail(r.Context(), chi.URLParam(r, "subscriptionID"), userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

type updateSubscriptionRequest struct {
	Name             *string          `json:"name"`
	Cost             *decimal.Decimal `json:"cost"`
	StartDate        *string          `json:"start_date"`
	RenewalFrequency *string          `json:"renewal_frequency"`
	Category         *string          `json:"category"`
	Notes            *string          `json:"notes"`
}

func (h *Handler) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := app.UpdateSubscriptionInput{
		Name:  req.Name,
		Cost:  req.Cost,
		Notes: req.Notes,
	}
	if req.StartDate != nil {
		startDate, err := time.Parse(dateLayout, *req.StartDate)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		patch.StartDate = &startDate
	}
	if req.RenewalFrequency != nil {
		freq := domain.Frequency(*req.RenewalFrequency)
		patch.RenewalFrequency = &freq
	}
	if req.Category != nil {
		patch.Category = req.Category
	}

	sub, err := h.subs.Update(r.Context(), chi.URLParam(r, "subscriptionID"), userID, patch)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

type reminderSettingsRequest struct {
	IsActive   bool `json:"is_active"`
	DaysBefore int  `json:"days_before"`
}

func (h *Handler) handleUpdateReminderSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req reminderSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.subs.UpdateReminderSettings(r.Context(), chi.URLParam(r, "subscriptionID"), userID, req.IsActive, req.DaysBefore)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.subs.Delete(r.Context(), chi.URLParam(r, "subscriptionID"), userID); err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Subscription deleted"})
}

func (h *Handler) handleAccountStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.subs.GetAccountStats(r.Context(), userID, time.Now().UTC())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
