package session

import (
	"os"
	"path/filepath"
	"testing"

	"libretto/models"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

func TestPersistRoundTrip(t *testing.T) {
	path := tempPath(t)

	s := NewStore(path)
	if _, ok := s.Current(); ok {
		t.Fatal("fresh store should be logged out")
	}

	user := models.User{ID: 7, Name: "Ada", Email: "ada@example.com"}
	if err := s.SetUser(user); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A read immediately following the write observes the new value.
	got, ok := s.Current()
	if !ok || got != user {
		t.Fatalf("expected %+v, got %+v (ok=%v)", user, got, ok)
	}

	// A second store on the same path sees the persisted identity.
	reloaded := NewStore(path)
	got, ok = reloaded.Current()
	if !ok || got.ID != 7 {
		t.Fatalf("reload lost user: %+v (ok=%v)", got, ok)
	}
}

func TestClearRemovesFile(t *testing.T) {
	path := tempPath(t)
	s := NewStore(path)
	if err := s.SetUser(models.User{ID: 1, Name: "x", Email: "x@example.com"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatal("still logged in after clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("session file still present: %v", err)
	}

	// Clearing an already cleared store is not an error.
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestCorruptFileStartsLoggedOut(t *testing.T) {
	path := tempPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := NewStore(path)
	if _, ok := s.Current(); ok {
		t.Fatal("corrupt file should mean logged out")
	}
}

func TestSubscribePublishesChanges(t *testing.T) {
	s := NewStore(tempPath(t))

	var events []*models.User
	s.Subscribe(func(u *models.User) { events = append(events, u) })

	user := models.User{ID: 3, Name: "Ada", Email: "ada@example.com"}
	if err := s.SetUser(user); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(events))
	}
	if events[0] == nil || events[0].ID != 3 {
		t.Fatalf("first notification wrong: %+v", events[0])
	}
	if events[1] != nil {
		t.Fatalf("logout notification should carry nil, got %+v", events[1])
	}
}

func TestCurrentUserID(t *testing.T) {
	s := NewStore(tempPath(t))
	if id, ok := s.CurrentUserID(); ok || id != 0 {
		t.Fatalf("logged-out id should be (0,false), got (%d,%v)", id, ok)
	}
	if err := s.SetUser(models.User{ID: 42, Name: "n", Email: "n@example.com"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if id, ok := s.CurrentUserID(); !ok || id != 42 {
		t.Fatalf("expected (42,true), got (%d,%v)", id, ok)
	}
}
