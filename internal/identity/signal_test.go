package identity

import (
	"testing"
	"time"
)

type transition struct {
	userID string
	authed bool
}

func TestSessionPublishesTransitions(t *testing.T) {
	s := NewSession()
	var got []transition
	s.Subscribe(func(userID string, authed bool) {
		got = append(got, transition{userID, authed})
	})

	s.SignIn("u1")
	s.SignOut()

	want := []transition{{"u1", true}, {"", false}}
	if len(got) != len(want) {
		t.Fatalf("expected %d transitions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transition %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSessionSkipsNoOpTransitions(t *testing.T) {
	s := NewSession()
	var calls int
	s.Subscribe(func(string, bool) { calls++ })

	s.SignOut() // already anonymous
	s.SignIn("u1")
	s.SignIn("u1") // unchanged
	s.SignIn("")   // ignored

	if calls != 1 {
		t.Fatalf("expected 1 transition, got %d", calls)
	}
}

func TestSessionCurrent(t *testing.T) {
	s := NewSession()
	if _, ok := s.Current(); ok {
		t.Fatal("new session should be anonymous")
	}
	s.SignIn("u1")
	if userID, ok := s.Current(); !ok || userID != "u1" {
		t.Fatalf("expected u1, got %q ok=%v", userID, ok)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := NewSession()
	var calls int
	unsub := s.Subscribe(func(string, bool) { calls++ })

	s.SignIn("u1")
	unsub()
	s.SignOut()

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestTokenManagerIssueValidate(t *testing.T) {
	m := NewTokenManager(time.Hour)
	token, deviceID := m.Issue()

	got, ok := m.Validate(token)
	if !ok || got != deviceID {
		t.Fatalf("expected device %q, got %q ok=%v", deviceID, got, ok)
	}
	if _, ok := m.Validate("bogus"); ok {
		t.Fatal("bogus token should not validate")
	}
}

func TestTokenManagerExpiry(t *testing.T) {
	m := NewTokenManager(-time.Second)
	token, _ := m.Issue()

	if _, ok := m.Validate(token); ok {
		t.Fatal("expired token should not validate")
	}
}
