package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitecrew/internal/domain/auth"
	"sitecrew/internal/domain/notifications"
	"sitecrew/internal/requestctx"
	"sitecrew/internal/transport/http/api"
	"sitecrew/internal/transport/http/middleware"
)

const (
	tokenTTL   = 8 * time.Hour
	sessionTTL = 7 * 24 * time.Hour
	resetTTL   = time.Hour
)

type Handler struct {
	Store    auth.StoreAPI
	Secret   string
	Notifier *notifications.Service
}

func NewHandler(store auth.StoreAPI, secret string, notifier *notifications.Service) *Handler {
	return &Handler{Store: store, Secret: secret, Notifier: notifier}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Post("/auth/refresh", h.handleRefresh)
	r.Post("/auth/password-reset/request", h.handleResetRequest)
	r.Post("/auth/password-reset/confirm", h.handleResetConfirm)
	r.Get("/auth/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	user, err := h.Store.FindActiveUserByEmail(r.Context(), payload.Email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}

	refresh, err := auth.NewOpaqueToken()
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}
	if err := h.Store.CreateSession(r.Context(), user.ID, auth.HashToken(refresh), time.Now().Add(sessionTTL)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:   user.ID,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
		MemberID: user.MemberID,
	}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"token":        token,
		"refreshToken": refresh,
		"user": map[string]string{
			"id":       user.ID,
			"email":    user.Email,
			"roleId":   user.RoleID,
			"role":     user.RoleName,
			"memberId": user.MemberID,
		},
	}, requestID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && payload.RefreshToken != "" {
		if err := h.Store.RevokeSession(r.Context(), user.UserID, auth.HashToken(payload.RefreshToken)); err != nil {
			slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, requestID)
}

// handleRefresh issues a fresh access token against a live refresh session.
// The refresh token is the only credential checked: the access token has
// usually expired by the time this endpoint is called.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.RefreshToken == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "refreshToken is required", requestID)
		return
	}

	user, err := h.Store.SessionUser(r.Context(), auth.HashToken(payload.RefreshToken))
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:   user.ID,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
		MemberID: user.MemberID,
	}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}
	api.Success(w, map[string]any{"token": token}, requestID)
}

func (h *Handler) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload resetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Email == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email is required", requestID)
		return
	}

	// Same response whether or not the account exists.
	userID, err := h.Store.UserIDByEmail(r.Context(), payload.Email)
	if err == nil {
		token, tokenErr := auth.NewOpaqueToken()
		if tokenErr == nil {
			if err := h.Store.CreatePasswordReset(r.Context(), userID, auth.HashToken(token), time.Now().Add(resetTTL)); err != nil {
				slog.Warn("password reset create failed", "userId", userID, "err", err)
			} else if h.Notifier != nil {
				_ = h.Notifier.Create(r.Context(), userID, notifications.TypePasswordReset,
					"Password reset", "Reset token: "+token)
			}
		}
	}
	api.Success(w, map[string]string{"status": "reset_requested"}, requestID)
}

func (h *Handler) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload resetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Token == "" || len(payload.NewPassword) < 8 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "token and a password of at least 8 characters are required", requestID)
		return
	}

	tokenHash := auth.HashToken(payload.Token)
	userID, err := h.Store.PasswordResetUserID(r.Context(), tokenHash)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_token", "invalid or expired reset token", requestID)
		return
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "hash_error", "failed to update password", requestID)
		return
	}
	if err := h.Store.UpdateUserPassword(r.Context(), userID, hash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "update_error", "failed to update password", requestID)
		return
	}
	if err := h.Store.MarkPasswordResetUsed(r.Context(), tokenHash); err != nil {
		slog.Warn("mark reset used failed", "userId", userID, "err", err)
	}
	api.Success(w, map[string]string{"status": "password_updated"}, requestID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	api.Success(w, map[string]string{
		"id":       user.UserID,
		"roleId":   user.RoleID,
		"role":     user.RoleName,
		"memberId": user.MemberID,
	}, requestID)
}
