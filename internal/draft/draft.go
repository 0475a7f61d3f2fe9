// Package draft persists unfinished commit messages per repository so they
// survive a restart.
package draft

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Draft is the stored form of a commit message.
type Draft struct {
	RepoRoot  string    `json:"repo_root"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps drafts as one JSON file per repository under Dir.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Key returns the storage key of a repository: the hex SHA-256 of its
// cleaned absolute path.
func Key(repoPath string) string {
	if abs, err := filepath.Abs(repoPath); err == nil {
		repoPath = abs
	}
	sum := sha256.Sum256([]byte(filepath.Clean(repoPath)))
	return hex.EncodeToString(sum[:])
}

func (s *Store) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// Load returns the draft stored under key. ok is false when none exists.
func (s *Store) Load(key string) (message string, ok bool, err error) {
	if s == nil || s.Dir == "" {
		return "", false, nil
	}
	path := s.path(key)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}

	// Shared lock: blocks while a writer holds the exclusive one.
	fileLock := flock.New(path + ".lock")
	if err := fileLock.RLock(); err != nil {
		return "", false, err
	}
	defer fileLock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return "", false, err
	}
	return d.Message, true, nil
}

// Save stores message under key. An empty message deletes the draft.
func (s *Store) Save(key, repoRoot, message string) error {
	if s == nil || s.Dir == "" {
		return nil
	}
	if message == "" {
		return s.Delete(key)
	}

	data, err := json.Marshal(Draft{RepoRoot: repoRoot, Message: message, UpdatedAt: time.Now()})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return err
	}
	path := s.path(key)

	fileLock := flock.New(path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return err
	}
	defer fileLock.Unlock()

	// Write to a temp file then rename so readers never see half a draft.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Delete removes the draft stored under key.
func (s *Store) Delete(key string) error {
	if s == nil || s.Dir == "" {
		return nil
	}
	path := s.path(key)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	fileLock := flock.New(path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return err
	}
	defer fileLock.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
