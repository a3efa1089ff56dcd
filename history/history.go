// Package history persists what the user has played and how far they got.
package history

import (
	"errors"
	"time"

	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/tubecli/tube/filesystem"
	"github.com/tubecli/tube/where"
	"golang.org/x/exp/slices"
)

var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every saved entry keyed by URL.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Save records entry. A replay never lowers the stored position.
func Save(entry *Entry) error {
	if entry.URL == "" {
		return errors.New("history entry without URL")
	}

	saved, err := Get()
	if err != nil {
		return err
	}

	record := *entry
	if record.PlayedAt.IsZero() {
		record.PlayedAt = time.Now()
	}

	if existing, ok := saved[record.key()]; ok {
		record.Position = max(record.Position, existing.Position)
		record.Duration = max(record.Duration, existing.Duration)
		if record.Title == "" {
			record.Title = existing.Title
		}
	}

	saved[record.key()] = &record
	return cacher.Set(saved)
}

// Remove deletes the entry with the given URL.
func Remove(url string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, url)
	return cacher.Set(saved)
}

// Clear deletes every entry.
func Clear() error {
	return cacher.Set(make(map[string]*Entry))
}

// Sorted returns the entries, most recently played first.
func Sorted() ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	slices.SortFunc(entries, func(a, b *Entry) int {
		return b.PlayedAt.Compare(a.PlayedAt)
	})
	return entries, nil
}
