package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

type stubNotificationRepo struct {
	items     []*domain.Notification
	insertErr error
	lastLimit int
}

func (r *stubNotificationRepo) Insert(_ context.Context, n *domain.Notification) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *n
	r.items = append(r.items, &clone)
	return nil
}

func (r *stubNotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]*domain.Notification, error) {
	r.lastLimit = limit
	var out []*domain.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			clone := *n
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, userID, id string) error {
	for _, n := range r.items {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

type stubPublisher struct {
	err       error
	published []*domain.Notification
}

func (p *stubPublisher) Publish(_ context.Context, n *domain.Notification) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, n)
	return nil
}

func TestNotificationService_NotifyStoresAndPublishes(t *testing.T) {
	repo := &stubNotificationRepo{}
	pub := &stubPublisher{}
	svc := NewNotificationService(repo, pub, zerolog.Nop())

	n, err := svc.Notify(context.Background(), "u1", "LX-1001", "Shipment LX-1001 is now in transit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ID == "" || n.CreatedAt.IsZero() || n.Read {
		t.Errorf("unexpected notification: %+v", n)
	}
	if len(repo.items) != 1 || len(pub.published) != 1 {
		t.Fatalf("expected one stored and one published, got %d/%d", len(repo.items), len(pub.published))
	}
	if pub.published[0].ID != n.ID {
		t.Errorf("published id %q does not match %q", pub.published[0].ID, n.ID)
	}
}

func TestNotificationService_PublishFailureIsNonFatal(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, &stubPublisher{err: errors.New("redis down")}, zerolog.Nop())

	if _, err := svc.Notify(context.Background(), "u1", "", "hello"); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got %v", err)
	}
	if len(repo.items) != 1 {
		t.Error("notification must still be stored")
	}
}

func TestNotificationService_InsertFailureSkipsPublish(t *testing.T) {
	pub := &stubPublisher{}
	svc := NewNotificationService(&stubNotificationRepo{insertErr: errors.New("mongo down")}, pub, zerolog.Nop())

	if _, err := svc.Notify(context.Background(), "u1", "", "hello"); err == nil {
		t.Fatal("expected error")
	}
	if len(pub.published) != 0 {
		t.Error("must not publish what was not stored")
	}
}

func TestNotificationService_ListNewestFirst(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, nil, zerolog.Nop())

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	_, _ = svc.Notify(context.Background(), "u1", "", "first")
	_, _ = svc.Notify(context.Background(), "u2", "", "other user")
	_, _ = svc.Notify(context.Background(), "u1", "", "second")

	list, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Message != "second" || list[1].Message != "first" {
		t.Errorf("unexpected order: %+v", list)
	}
	if repo.lastLimit != listLimit {
		t.Errorf("expected limit %d, got %d", listLimit, repo.lastLimit)
	}

	if _, err := svc.List(context.Background(), ""); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for anonymous list, got %v", err)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, nil, zerolog.Nop())
	n, _ := svc.Notify(context.Background(), "u1", "", "hi")

	if err := svc.MarkRead(context.Background(), "u2", n.ID); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Errorf("other users must not mark read, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), "u1", n.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.items[0].Read {
		t.Error("expected notification marked read")
	}
}
