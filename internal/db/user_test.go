package db

import (
	"testing"
	"time"
)

func TestStore_CreateAndGetUser(t *testing.T) {
	store := NewTestStore(t)

	u := &User{Email: "ada@example.com", PasswordHash: "$2a$10$stub"}
	if err := store.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.ID == "" {
		t.Error("user ID not assigned")
	}

	got, err := store.GetUserByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Error("lookup by email should find the created user")
	}

	got, err = store.GetUser(u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got == nil || got.PasswordHash != "$2a$10$stub" {
		t.Error("password hash not persisted")
	}
}

func TestStore_CreateUser_DuplicateEmail(t *testing.T) {
	store := NewTestStore(t)

	if err := store.CreateUser(&User{Email: "dup@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := store.CreateUser(&User{Email: "dup@example.com", PasswordHash: "y"}); err == nil {
		t.Error("duplicate email should be rejected")
	}
}

func TestStore_SessionLifecycle(t *testing.T) {
	store := NewTestStore(t)

	u := &User{Email: "sess@example.com", PasswordHash: "x"}
	if err := store.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	sess, err := store.CreateSession(u.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("session token not assigned")
	}

	got, err := store.GetSession(sess.Token)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || got.UserID != u.ID {
		t.Error("session should resolve to its user")
	}

	if err := store.DeleteSession(sess.Token); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	got, err = store.GetSession(sess.Token)
	if err != nil {
		t.Fatalf("GetSession after delete failed: %v", err)
	}
	if got != nil {
		t.Error("deleted session should not resolve")
	}
}

func TestStore_GetSession_Expired(t *testing.T) {
	store := NewTestStore(t)

	u := &User{Email: "stale@example.com", PasswordHash: "x"}
	if err := store.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	sess, err := store.CreateSession(u.ID, -time.Minute)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := store.GetSession(sess.Token)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Error("expired session should not resolve")
	}

	if err := store.PurgeExpiredSessions(); err != nil {
		t.Fatalf("PurgeExpiredSessions failed: %v", err)
	}
}

func TestStore_ProfileRoundTrip(t *testing.T) {
	store := NewTestStore(t)

	u := &User{Email: "pm@example.com", PasswordHash: "x"}
	if err := store.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	p := &Profile{ID: u.ID, FullName: "Project Lead", Role: "pm"}
	if err := store.CreateProfile(p); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	got, err := store.GetProfile(u.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got == nil || got.Role != "pm" || got.FullName != "Project Lead" {
		t.Errorf("profile round trip failed: %+v", got)
	}

	p.FullName = "Renamed Lead"
	if err := store.UpdateProfile(p); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	got, err = store.GetProfile(u.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got.FullName != "Renamed Lead" {
		t.Errorf("FullName = %q, want Renamed Lead", got.FullName)
	}
}

func TestStore_RecordAndListLogins(t *testing.T) {
	store := NewTestStore(t)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if err := store.RecordLogin(&LoginLog{Email: email, Role: "developer"}); err != nil {
			t.Fatalf("RecordLogin failed: %v", err)
		}
	}

	logs, err := store.ListLoginLogs()
	if err != nil {
		t.Fatalf("ListLoginLogs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(logs))
	}
	if logs[0].ID < logs[1].ID {
		t.Error("login logs should list newest first")
	}
}
