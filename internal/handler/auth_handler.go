package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/identity"
)

type RegisterRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Nickname string `json:"nickname"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SessionResponse struct {
	Token string         `json:"token"`
	User  *identity.User `json:"user"`
}

// AuthHandler — вход, выход и регистрация. Каждый успешный переход
// идентичности прогоняется через identity.Manager, чтобы корзина нового
// ключа была загружена до ответа клиенту.
type AuthHandler struct {
	sessions identity.Service
	manager  *identity.Manager
	validate *validator.Validate
}

func NewAuthHandler(sessions identity.Service, manager *identity.Manager) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		manager:  manager,
		validate: validator.New(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
	router.Post("/auth/logout", h.handleLogout)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest
	if err := decodeBody(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "phone and password are required")
		return
	}

	user, token, err := h.sessions.Register(r.Context(), requestPayload.Phone, requestPayload.Nickname, requestPayload.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user")
		respondWithError(w, mapErrorToStatusCode(err), "failed to register")
		return
	}

	if err := h.manager.Transition(r.Context(), user); err != nil {
		log.Error().Err(err).Msg("Failed to switch cart after registration")
		respondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	respondWithJSON(w, http.StatusCreated, SessionResponse{Token: token, User: user})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest
	if err := decodeBody(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "phone and password are required")
		return
	}

	user, token, err := h.sessions.Login(r.Context(), requestPayload.Phone, requestPayload.Password)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "invalid phone or password")
		return
	}

	if err := h.manager.Transition(r.Context(), user); err != nil {
		log.Error().Err(err).Msg("Failed to switch cart after login")
		respondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	respondWithJSON(w, http.StatusOK, SessionResponse{Token: token, User: user})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		h.sessions.Logout(token)
	}

	// Гостевой ключ — собственное пространство: корзина авторизованного
	// пользователя за ним не следует.
	if err := h.manager.Transition(r.Context(), nil); err != nil {
		log.Error().Err(err).Msg("Failed to switch to guest cart after logout")
		respondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func decodeBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	return decoder.Decode(dst)
}
