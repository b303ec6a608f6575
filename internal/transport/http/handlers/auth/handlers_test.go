package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"sitecrew/internal/domain/auth"
)

type fakeAuthStore struct {
	usersByEmail  map[string]auth.AuthUser
	sessionsByKey map[string]auth.AuthUser
	revoked       []string
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{
		usersByEmail:  map[string]auth.AuthUser{},
		sessionsByKey: map[string]auth.AuthUser{},
	}
}

func (f *fakeAuthStore) FindActiveUserByEmail(ctx context.Context, email string) (auth.AuthUser, error) {
	user, ok := f.usersByEmail[email]
	if !ok {
		return auth.AuthUser{}, errors.New("no rows")
	}
	return user, nil
}

func (f *fakeAuthStore) CreateSession(ctx context.Context, userID, refreshTokenHash string, expires time.Time) error {
	for _, user := range f.usersByEmail {
		if user.ID == userID {
			f.sessionsByKey[refreshTokenHash] = user
			return nil
		}
	}
	return errors.New("unknown user")
}

func (f *fakeAuthStore) RevokeSession(ctx context.Context, userID, refreshTokenHash string) error {
	delete(f.sessionsByKey, refreshTokenHash)
	f.revoked = append(f.revoked, refreshTokenHash)
	return nil
}

func (f *fakeAuthStore) SessionUser(ctx context.Context, refreshTokenHash string) (auth.AuthUser, error) {
	user, ok := f.sessionsByKey[refreshTokenHash]
	if !ok {
		return auth.AuthUser{}, errors.New("no rows")
	}
	return user, nil
}

func (f *fakeAuthStore) UpdateLastLogin(ctx context.Context, userID string) error { return nil }

func (f *fakeAuthStore) UserIDByEmail(ctx context.Context, email string) (string, error) {
	user, ok := f.usersByEmail[email]
	if !ok {
		return "", errors.New("no rows")
	}
	return user.ID, nil
}

func (f *fakeAuthStore) CreatePasswordReset(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	return nil
}

func (f *fakeAuthStore) PasswordResetUserID(ctx context.Context, tokenHash string) (string, error) {
	return "", errors.New("no rows")
}

func (f *fakeAuthStore) UpdateUserPassword(ctx context.Context, userID, hash string) error {
	return nil
}

func (f *fakeAuthStore) MarkPasswordResetUsed(ctx context.Context, tokenHash string) error {
	return nil
}

func newAuthRouter(store *fakeAuthStore) chi.Router {
	router := chi.NewRouter()
	NewHandler(store, "refresh-secret", nil).RegisterRoutes(router)
	return router
}

func seedSession(store *fakeAuthStore) (string, auth.AuthUser) {
	user := auth.AuthUser{ID: "user-1", Email: "ana@site.test", RoleID: "role-1", RoleName: auth.RoleWorker, MemberID: "member-1"}
	store.usersByEmail[user.Email] = user
	refresh, _ := auth.NewOpaqueToken()
	store.sessionsByKey[auth.HashToken(refresh)] = user
	return refresh, user
}

// A refresh must succeed on the refresh token alone: by the time clients call
// it, the access token has typically expired and the auth middleware attaches
// no user context.
func TestRefreshWorksWithoutAccessToken(t *testing.T) {
	store := newFakeAuthStore()
	refresh, user := seedSession(store)
	router := newAuthRouter(store)

	body := strings.NewReader(`{"refreshToken":"` + refresh + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	claims, err := auth.ParseToken("refresh-secret", envelope.Data.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != user.ID || claims.RoleName != user.RoleName || claims.MemberID != user.MemberID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	store := newFakeAuthStore()
	seedSession(store)
	router := newAuthRouter(store)

	body := strings.NewReader(`{"refreshToken":"not-a-session"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRefreshRequiresToken(t *testing.T) {
	router := newAuthRouter(newFakeAuthStore())
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
