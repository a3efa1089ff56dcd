package constant

// Default external tool binaries looked up on PATH.
const (
	PlayerBinary     = "mpv"
	DownloaderBinary = "yt-dlp"
	FFmpegBinary     = "ffmpeg"
)

// Media URL prefixes.
const (
	YoutubeWatchURL = "https://www.youtube.com/watch?v="
	MusicWatchURL   = "https://music.youtube.com/watch?v="
)
