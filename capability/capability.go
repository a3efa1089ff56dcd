// Package capability reports which external tools are available.
//
// A Set is detected once per command invocation and passed to whatever needs
// it; nothing here is cached globally.
package capability

import (
	"fmt"
	"os/exec"

	"github.com/samber/mo"
	"github.com/tubecli/tube/constant"
)

// Tool is one external binary and where it was found.
type Tool struct {
	Name string
	Path mo.Option[string]

	// Hint tells the user how to get the tool.
	Hint string
}

// Available reports whether the tool was found on PATH.
func (t Tool) Available() bool {
	return t.Path.IsPresent()
}

// Set is the result of a single detection pass.
type Set struct {
	Player     Tool
	Downloader Tool
	FFmpeg     Tool
}

// LookPath resolves a binary name. Replaced in tests.
type LookPath func(file string) (string, error)

// Detect probes PATH for the player, the downloader and ffmpeg.
func Detect(playerBinary, downloaderBinary string) Set {
	return DetectWith(exec.LookPath, playerBinary, downloaderBinary)
}

// DetectWith is Detect with a custom resolver.
func DetectWith(look LookPath, playerBinary, downloaderBinary string) Set {
	if playerBinary == "" {
		playerBinary = constant.PlayerBinary
	}
	if downloaderBinary == "" {
		downloaderBinary = constant.DownloaderBinary
	}

	probe := func(name, hint string) Tool {
		tool := Tool{Name: name, Path: mo.None[string](), Hint: hint}
		if path, err := look(name); err == nil {
			tool.Path = mo.Some(path)
		}
		return tool
	}

	return Set{
		Player:     probe(playerBinary, "https://mpv.io/installation/"),
		Downloader: probe(downloaderBinary, "https://github.com/yt-dlp/yt-dlp#installation"),
		FFmpeg:     probe(constant.FFmpegBinary, "https://ffmpeg.org/download.html"),
	}
}

// Tools lists every probed tool in display order.
func (s Set) Tools() []Tool {
	return []Tool{s.Player, s.Downloader, s.FFmpeg}
}

func missing(t Tool, purpose string) error {
	return fmt.Errorf("%s is required to %s but was not found in PATH, see %s", t.Name, purpose, t.Hint)
}

// RequirePlayback fails unless playing media is possible.
func (s Set) RequirePlayback() error {
	if !s.Player.Available() {
		return missing(s.Player, "play media")
	}
	if !s.Downloader.Available() {
		return missing(s.Downloader, "resolve streams")
	}
	return nil
}

// RequireSearch fails unless searching is possible.
func (s Set) RequireSearch() error {
	if !s.Downloader.Available() {
		return missing(s.Downloader, "search")
	}
	return nil
}

// RequireDownload fails unless downloading is possible. Extracting audio
// additionally needs ffmpeg.
func (s Set) RequireDownload(audio bool) error {
	if !s.Downloader.Available() {
		return missing(s.Downloader, "download")
	}
	if audio && !s.FFmpeg.Available() {
		return missing(s.FFmpeg, "extract audio")
	}
	return nil
}
