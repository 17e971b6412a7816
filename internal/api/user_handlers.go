/**
 * @description
 * HTTP handlers for account endpoints: registration, login, profile, display
 * currency and premium grants.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartysub/tracker-service/internal/app"
	"github.com/smartysub/tracker-service/internal/domain"
	"github.com/smartysub/tracker-service/internal/store"
)

type registerRequest struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			respondWithError(w, http.StatusConflict, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	login := req.Email
	if login == "" {
		login = req.UserName
	}

	user, err := h.users.Login(r.Context(), login, req.Password)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, app.ErrInvalidCredentials.Error())
		return
	}

	token, err := GenerateToken(h.jwtSecret, user.ID, h.tokenTTL)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondWithJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) handleListCurrencies(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, domain.Currencies)
}

type setCurrencyRequest struct {
	Currency string `json:"currency"`
}

func (h *Handler) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req setCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Currency == "" {
		respondWithError(w, http.StatusBadRequest, "Currency is required")
		return
	}

	user, err := h.users.SetCurrency(r.Context(), userID, req.Currency)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) handleMakePremium(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFromContext(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.MakePremium(r.Context(), chi.URLParam(r, "userID"), h.premiumDays)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}
