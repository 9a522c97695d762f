package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// sessionDirEnv overrides the session cache directory (tests, sandboxes).
const sessionDirEnv = "ICO_SESSION_DIR"

const sessionVersion = 1

// unlockedKey is one wallet key cached by `wallet unlock`.
type unlockedKey struct {
	Account    common.Address `json:"account"`
	Key        string         `json:"key"`
	UnlockedAt time.Time      `json:"unlocked_at"`
}

// session is the on-disk unlock cache, indexed by keychain reference.
type session struct {
	Version int                     `json:"version"`
	Keys    map[string]*unlockedKey `json:"keys"`
}

// sessionPath is ~/.cache/ico/session.json or the platform equivalent.
func sessionPath() string {
	if dir := os.Getenv(sessionDirEnv); dir != "" {
		return filepath.Join(dir, "session.json")
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ico", "session.json")
}

// openSession reads the cache. A missing, corrupt or older-format file
// reads as an empty session.
func openSession() *session {
	s := &session{Version: sessionVersion, Keys: map[string]*unlockedKey{}}
	data, err := os.ReadFile(sessionPath())
	if err != nil {
		return s
	}
	var disk session
	if json.Unmarshal(data, &disk) != nil || disk.Version != sessionVersion || disk.Keys == nil {
		return s
	}
	return &disk
}

func (s *session) save() error {
	path := sessionPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	return os.Chmod(path, 0o600)
}

// lookup returns the cached key for ref.
func (s *session) lookup(ref string) (string, bool) {
	k, ok := s.Keys[ref]
	if !ok || k.Key == "" {
		return "", false
	}
	return k.Key, true
}

// holds reports whether the cache has a key for w that was recorded for
// w's current address.
func (s *session) holds(w *Wallet) bool {
	k, ok := s.Keys[w.KeyRef]
	return ok && k.Account == w.Account()
}

// remember caches hexKey for w. Failures to write are ignored; the
// keychain remains the source of truth.
func remember(w *Wallet, hexKey string) {
	s := openSession()
	s.Keys[w.KeyRef] = &unlockedKey{
		Account:    w.Account(),
		Key:        strings.TrimSpace(hexKey),
		UnlockedAt: time.Now().UTC(),
	}
	_ = s.save()
}

// forget drops ref from the cache.
func forget(ref string) {
	s := openSession()
	if _, ok := s.Keys[ref]; !ok {
		return
	}
	delete(s.Keys, ref)
	_ = s.save()
}

// Unlocked reports whether w can sign without prompting the keychain.
func (m *Manager) Unlocked(w *Wallet) bool {
	if !w.CanSign() {
		return false
	}
	return openSession().holds(w)
}

// UnlockedSince returns when w was unlocked, or the zero time.
func (m *Manager) UnlockedSince(w *Wallet) time.Time {
	if k, ok := openSession().Keys[w.KeyRef]; ok && m.Unlocked(w) {
		return k.UnlockedAt
	}
	return time.Time{}
}

// SessionActive reports whether any key is cached.
func (m *Manager) SessionActive() bool {
	return len(openSession().Keys) > 0
}

// Lock removes every cached key.
func (m *Manager) Lock() error {
	err := os.Remove(sessionPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
