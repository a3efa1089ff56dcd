package youtube

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tubecli/tube/log"
)

// DownloadOptions controls what Download fetches and where it goes.
type DownloadOptions struct {
	// Audio extracts the audio track only.
	Audio bool

	// Format is the audio codec (mp3, opus, ...) for audio downloads,
	// or the container (mp4, mkv, ...) for video downloads.
	Format string

	// Dir is the destination directory.
	Dir string
}

const outputTemplate = "%(title)s [%(id)s].%(ext)s"

// Download fetches target and returns the path of the written file.
func (c *Client) Download(ctx context.Context, target string, opts DownloadOptions) (string, error) {
	if !IsURL(target) {
		return "", fmt.Errorf("download target %q is not a URL", target)
	}

	cmd := c.command().
		NoPlaylist().
		NoSimulate().
		NoProgress().
		Print("after_move:filepath").
		Output(filepath.Join(opts.Dir, outputTemplate))

	if opts.Audio {
		cmd = cmd.ExtractAudio()
		if opts.Format != "" {
			cmd = cmd.AudioFormat(opts.Format)
		}
	} else {
		cmd = cmd.Format("bestvideo+bestaudio/best")
		if opts.Format != "" {
			cmd = cmd.MergeOutputFormat(opts.Format)
		}
	}

	entry := log.With(log.Fields{"target": target, "audio": opts.Audio, "format": opts.Format})
	entry.Infof("downloading to %s", opts.Dir)

	res, err := cmd.Run(ctx, target)
	if err != nil {
		entry.Errorf("download failed: %v", err)
		return "", fmt.Errorf("download %s: %w", target, err)
	}

	path := lastLine(res.Stdout)
	if path == "" {
		return "", fmt.Errorf("download %s: no output file reported", target)
	}

	entry.Infof("saved %s", path)
	return path, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
