// Package youtube searches and downloads media through the yt-dlp binary.
package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/tubecli/tube/constant"
	"github.com/tubecli/tube/internal/cache"
	"github.com/tubecli/tube/log"
)

// Item is a single search result.
type Item struct {
	ID       string
	Title    string
	Uploader string
	Duration time.Duration
	URL      string
}

func (i Item) String() string {
	if i.Uploader == "" {
		return i.Title
	}
	return fmt.Sprintf("%s - %s", i.Title, i.Uploader)
}

// Client runs searches and downloads. The zero value is not usable; see New.
type Client struct {
	// Binary is the yt-dlp executable.
	Binary string

	// Limit caps the number of search results.
	Limit int

	// Music searches YouTube Music instead of YouTube.
	Music bool

	// Cache keeps search results between runs. Nil disables caching.
	Cache *cache.Store
}

// New returns a client for the given binary path.
func New(binary string, limit int, music bool) *Client {
	if limit <= 0 {
		limit = 15
	}
	return &Client{Binary: binary, Limit: limit, Music: music}
}

const searchTemplate = "%(id)s\t%(url)s\t%(duration)s\t%(uploader)s\t%(title)s"

func (c *Client) command() *ytdlp.Command {
	cmd := ytdlp.New().NoWarnings().IgnoreConfig()
	if c.Binary != "" && c.Binary != constant.DownloaderBinary {
		cmd = cmd.SetExecutable(c.Binary)
	}
	return cmd
}

// Search returns the first results for q.
func (c *Client) Search(ctx context.Context, q string) ([]Item, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("empty search query")
	}

	prefix := "ytsearch"
	if c.Music {
		prefix = "ytmsearch"
	}

	entry := log.With(log.Fields{"query": q, "music": c.Music})

	cacheKey := cache.Key(prefix, strconv.Itoa(c.Limit), q)
	if c.Cache != nil {
		var cached []Item
		if c.Cache.Read(cacheKey, &cached) {
			entry.Debugf("using %d cached results", len(cached))
			return cached, nil
		}
	}

	entry.Debugf("searching")

	res, err := c.command().
		FlatPlaylist().
		Print(searchTemplate).
		PlaylistItems(fmt.Sprintf("1-%d", c.Limit)).
		Run(ctx, fmt.Sprintf("%s%d:%s", prefix, c.Limit, q))
	if err != nil {
		entry.Errorf("search failed: %v", err)
		return nil, fmt.Errorf("search %q: %w", q, err)
	}

	items := parseSearch(res.Stdout, c.Music)
	entry.Debugf("found %d results", len(items))

	if c.Cache != nil && len(items) > 0 {
		if err := c.Cache.Write(cacheKey, items); err != nil {
			entry.Warnf("cache results: %v", err)
		}
	}
	return items, nil
}

func parseSearch(stdout string, music bool) []Item {
	var items []Item
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		parts := strings.SplitN(strings.TrimRight(line, "\r"), "\t", 5)
		if len(parts) < 5 || parts[0] == "" {
			continue
		}

		item := Item{
			ID:       parts[0],
			URL:      parts[1],
			Duration: parseSeconds(parts[2]),
			Uploader: naToEmpty(parts[3]),
			Title:    parts[4],
		}
		if !IsURL(item.URL) {
			item.URL = VideoURL(item.ID, music)
		}
		items = append(items, item)
	}
	return items
}

func parseSeconds(s string) time.Duration {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func naToEmpty(s string) string {
	if s == "NA" {
		return ""
	}
	return s
}

// VideoURL returns the watch page for a video id.
func VideoURL(id string, music bool) string {
	if music {
		return constant.MusicWatchURL + url.QueryEscape(id)
	}
	return constant.YoutubeWatchURL + url.QueryEscape(id)
}

// IsURL reports whether s is an http(s) URL rather than a search query.
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
