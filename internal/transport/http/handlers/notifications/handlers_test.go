package notificationshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"sitecrew/internal/domain/auth"
	"sitecrew/internal/domain/notifications"
	"sitecrew/internal/transport/http/middleware"
)

type fakeNotifyStore struct {
	items  []map[string]any
	unread int
	read   []string
}

func (f *fakeNotifyStore) CreateNotification(ctx context.Context, userID, ntype, title, body string) error {
	f.items = append(f.items, map[string]any{"userId": userID, "type": ntype, "title": title, "body": body})
	return nil
}

func (f *fakeNotifyStore) UserEmail(ctx context.Context, userID string) (string, error) {
	return "", nil
}

func (f *fakeNotifyStore) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]map[string]any, error) {
	return f.items, nil
}

func (f *fakeNotifyStore) CountUnread(ctx context.Context, userID string) (int, error) {
	return f.unread, nil
}

func (f *fakeNotifyStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	f.read = append(f.read, notificationID)
	return nil
}

func newTestRouter(store *fakeNotifyStore) chi.Router {
	router := chi.NewRouter()
	NewHandler(notifications.New(store, nil, "")).RegisterRoutes(router)
	return router
}

func authedRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := middleware.WithUser(req.Context(), auth.UserContext{UserID: "user-1", RoleName: auth.RoleWorker})
	return req.WithContext(ctx)
}

func TestListRequiresAuthentication(t *testing.T) {
	router := newTestRouter(&fakeNotifyStore{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestUnreadCount(t *testing.T) {
	router := newTestRouter(&fakeNotifyStore{unread: 3})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/notifications/unread-count"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Unread int `json:"unread"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Unread != 3 {
		t.Fatalf("expected 3 unread, got %d", envelope.Data.Unread)
	}
}

func TestMarkRead(t *testing.T) {
	store := &fakeNotifyStore{}
	router := newTestRouter(store)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/notifications/n-42/read"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.read) != 1 || store.read[0] != "n-42" {
		t.Fatalf("expected n-42 marked read, got %v", store.read)
	}
}
