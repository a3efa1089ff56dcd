// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount is the number of registered configuration fields.
const DefinedFieldsCount = 20

// Media Playback - these keys configure the external player process and its IPC session.
const (
	PlayerBinary             = "player.binary"
	PlayerAudioOnly          = "player.audio_only"
	PlayerExtraArgs          = "player.extra_args"
	PlayerConnectTimeoutMs   = "player.connect_timeout_ms"
	PlayerCommandTimeoutMs   = "player.command_timeout_ms"
	PlayerTerminateTimeoutMs = "player.terminate_timeout_ms"
	PlayerSeekStep           = "player.seek_step"
	PlayerVolumeStep         = "player.volume_step"
)

// Youtube - these keys govern searching through the downloader binary.
const (
	YoutubeSearchLimit = "youtube.search_limit"
	YoutubeMusic       = "youtube.music"
)

// Downloads - these keys define where and how media is saved.
const (
	DownloadsPath        = "downloads.path"
	DownloadsAudioFormat = "downloads.audio_format"
	DownloadsVideoFormat = "downloads.video_format"
)

// History Tracking - these keys configure the persistence of playback state.
const (
	HistorySaveOnPlay = "history.save_on_play"
)

// Search Interaction - these keys define the UX parameters for search prompts.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
