package notifications

import (
	"context"
	"errors"
	"testing"
)

type fakeNotifyStore struct {
	created  []string
	email    string
	emailErr error
}

func (f *fakeNotifyStore) CreateNotification(_ context.Context, userID, ntype, _, _ string) error {
	f.created = append(f.created, userID+":"+ntype)
	return nil
}

func (f *fakeNotifyStore) UserEmail(_ context.Context, _ string) (string, error) {
	return f.email, f.emailErr
}

func (f *fakeNotifyStore) ListNotifications(_ context.Context, _ string, _, _ int) ([]map[string]any, error) {
	return nil, nil
}

func (f *fakeNotifyStore) CountUnread(_ context.Context, _ string) (int, error) { return 0, nil }

func (f *fakeNotifyStore) MarkRead(_ context.Context, _, _ string) error { return nil }

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) Send(_ context.Context, _, to, subject, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+":"+subject)
	return nil
}

func TestCreateStoresAndMails(t *testing.T) {
	store := &fakeNotifyStore{email: "ana@site.test"}
	mailer := &recordingMailer{}
	svc := New(store, mailer, "crew@site.test")

	if err := svc.Create(context.Background(), "user-1", TypeTaskAssigned, "New task", "Foundations"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(store.created) != 1 || store.created[0] != "user-1:"+TypeTaskAssigned {
		t.Fatalf("unexpected stored notifications: %v", store.created)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "ana@site.test:New task" {
		t.Fatalf("unexpected mail: %v", mailer.sent)
	}
}

func TestCreateToleratesLookupFailure(t *testing.T) {
	store := &fakeNotifyStore{emailErr: errors.New("no such user")}
	mailer := &recordingMailer{}
	svc := New(store, mailer, "")

	if err := svc.Create(context.Background(), "user-1", TypeInvoiceIssued, "Invoice", ""); err != nil {
		t.Fatalf("email lookup failure must not fail create: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatal("expected no mail on lookup failure")
	}
}

func TestCreateSwallowsSendFailure(t *testing.T) {
	store := &fakeNotifyStore{email: "ana@site.test"}
	mailer := &recordingMailer{err: errors.New("smtp down")}
	svc := New(store, mailer, "")

	if err := svc.Create(context.Background(), "user-1", TypeAttendanceApproved, "Approved", ""); err != nil {
		t.Fatalf("send failure must not fail create: %v", err)
	}
}

func TestCreateWithoutMailer(t *testing.T) {
	store := &fakeNotifyStore{email: "ana@site.test"}
	svc := New(store, nil, "")
	if err := svc.Create(context.Background(), "user-1", TypeAttendanceLogged, "Logged", ""); err != nil {
		t.Fatalf("create without mailer: %v", err)
	}
}
