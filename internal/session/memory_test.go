package session

import (
	"context"
	"testing"
	"time"

	"github.com/spectrum-health/clinicdash/internal/clinic"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	user := clinic.User{ID: 7, Username: "jdoe", FullName: "Jane Doe", Role: "staff", IsActive: true}
	s.Set(ctx, "tab-1", "tok-abc", user, time.Hour)

	got, ok := s.Get(ctx, "tab-1")
	if !ok {
		t.Fatal("expected session present")
	}
	if got.Token != "tok-abc" {
		t.Fatalf("unexpected token: %q", got.Token)
	}
	if got.User != user {
		t.Fatalf("user not round-tripped: %+v", got.User)
	}
}

func TestMemoryStore_ExpiredClearsOnRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }
	s.Set(ctx, "tab-1", "tok", clinic.User{ID: 1}, time.Minute)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok := s.Get(ctx, "tab-1"); ok {
		t.Fatal("expected expired session to read as absent")
	}
	// The expired read must have emptied storage, not just hidden it.
	if len(s.sessions) != 0 {
		t.Fatalf("expected storage empty after expiry, got %d entries", len(s.sessions))
	}
}

func TestMemoryStore_ClearIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "tab-1", "tok", clinic.User{ID: 1}, time.Hour)
	if !s.Clear(ctx, "tab-1") {
		t.Fatal("first clear should report removal")
	}
	if s.Clear(ctx, "tab-1") {
		t.Fatal("second clear should be a no-op")
	}
	if _, ok := s.Get(ctx, "tab-1"); ok {
		t.Fatal("expected absent after clear")
	}
}

func TestMemoryStore_MissingIsAbsent(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get(context.Background(), "never-set"); ok {
		t.Fatal("expected absent for unknown id")
	}
}
