// Package session owns the locally persisted identity: at most one User,
// surviving client restarts the way the original web client survived reloads.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"libretto/models"
	"libretto/utils"

	"go.uber.org/zap"
)

// sessionRecord is the on-disk shape of the persisted identity.
type sessionRecord struct {
	User      models.User `json:"user"`
	SavedAt   time.Time   `json:"savedAt"`
	ClientVer int         `json:"clientVer"`
}

const recordVersion = 1

// Store holds the current identity. It is read by many components but
// written only through SetUser and Clear. A read immediately following a
// write observes the new value; persistence failures degrade to logged-out
// rather than blocking the client.
type Store struct {
	mu     sync.RWMutex
	path   string
	user   *models.User
	subs   []func(*models.User)
	logger *zap.Logger
}

// NewStore loads any previously persisted identity from path. A missing file
// means logged-out; an unreadable or corrupt file is logged and treated the
// same way.
func NewStore(path string) *Store {
	s := &Store{path: path, logger: utils.GetLogger()}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("session file unreadable, starting logged-out",
				zap.String("path", s.path), zap.Error(err))
		}
		return
	}
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.User.ID == 0 {
		s.logger.Warn("session file corrupt, starting logged-out",
			zap.String("path", s.path), zap.Error(err))
		return
	}
	u := rec.User
	s.user = &u
}

// Current returns the signed-in user, if any. Pure read, never touches disk
// or network.
func (s *Store) Current() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// CurrentUserID returns the signed-in user's id, if any.
func (s *Store) CurrentUserID() (int, bool) {
	u, ok := s.Current()
	if !ok {
		return 0, false
	}
	return u.ID, true
}

// SetUser persists u as the current identity and publishes the change.
// On a persistence failure the in-memory identity is still set, so the
// running process stays consistent, and the error is returned.
func (s *Store) SetUser(u models.User) error {
	s.mu.Lock()
	copied := u
	s.user = &copied
	subs := append(([]func(*models.User))(nil), s.subs...)
	s.mu.Unlock()

	err := s.persist(u)
	for _, fn := range subs {
		fn(&copied)
	}
	return err
}

// Clear removes the persisted identity and publishes the logged-out state.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.user = nil
	subs := append(([]func(*models.User))(nil), s.subs...)
	s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && os.IsNotExist(err) {
		err = nil
	}
	for _, fn := range subs {
		fn(nil)
	}
	return err
}

// Subscribe registers fn to run after every identity change. fn receives the
// new user, or nil on logout, and is called synchronously in mutation order.
func (s *Store) Subscribe(fn func(*models.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) persist(u models.User) error {
	rec := sessionRecord{User: u, SavedAt: time.Now().UTC(), ClientVer: recordVersion}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o600)
}
