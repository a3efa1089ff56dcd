// Package cache keeps JSON documents on disk until they expire.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tubecli/tube/filesystem"
	"github.com/tubecli/tube/log"
)

// Store is a directory of cached documents sharing one lifetime.
type Store struct {
	Dir string
	TTL time.Duration
}

// New returns a store rooted at dir.
func New(dir string, ttl time.Duration) *Store {
	return &Store{Dir: dir, TTL: ttl}
}

// Key derives a stable file name from parts. Case and whitespace in parts are ignored.
func Key(parts ...string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(strings.Join(parts, "\x00")), ""))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

func (s *Store) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func (s *Store) expired(info os.FileInfo) bool {
	return time.Since(info.ModTime()) > s.TTL
}

// Read decodes the document stored under key into target. It reports false
// when the document is missing, expired or unreadable.
func (s *Store) Read(key string, target any) bool {
	fs := filesystem.API()
	path := s.path(key)

	info, err := fs.Stat(path)
	if err != nil || s.expired(info) {
		return false
	}

	f, err := fs.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(target); err != nil {
		log.Warnf("cache: corrupted entry %s: %v", key, err)
		return false
	}
	return true
}

// Write stores data under key. The file is replaced atomically.
func (s *Store) Write(key string, data any) error {
	fs := filesystem.API()
	if err := fs.MkdirAll(s.Dir, os.ModePerm); err != nil {
		return err
	}

	path := s.path(key)
	tmp := path + ".tmp"

	f, err := fs.Create(tmp)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(data); err != nil {
		_ = f.Close()
		_ = fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return fs.Rename(tmp, path)
}

// CollectGarbage removes every expired document and returns how many went.
func (s *Store) CollectGarbage() int {
	fs := filesystem.API()

	var removed int
	_ = fs.Walk(s.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !s.expired(info) {
			return nil
		}
		if fs.Remove(path) == nil {
			removed++
		}
		return nil
	})

	if removed > 0 {
		log.Debugf("cache: removed %d expired entries from %s", removed, s.Dir)
	}
	return removed
}
