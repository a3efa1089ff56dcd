package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Warn
	Progress
	Play
	Pause
	Audio
	Video
	Search
	Download
	History
	Volume
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "✗",
		kaomoji: "(╯°□°)╯",
		squares: "🟥",
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    "",
		plain:   "!",
		kaomoji: "(・_・ヾ",
		squares: "🟨",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・ω・)",
		squares: "🟦",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "♪(´▽｀)",
		squares: "🟩",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "🟨",
	},
	Audio: {
		emoji:   "🎧",
		nerd:    "",
		plain:   "audio",
		kaomoji: "♪♪",
		squares: "🟪",
	},
	Video: {
		emoji:   "🎬",
		nerd:    "",
		plain:   "video",
		kaomoji: "[▶]",
		squares: "🟦",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "",
		plain:   "?",
		kaomoji: "(o_O)",
		squares: "⬜",
	},
	Download: {
		emoji:   "📥",
		nerd:    "",
		plain:   "v",
		kaomoji: "(っ˘ω˘ς)",
		squares: "🟫",
	},
	History: {
		emoji:   "📜",
		nerd:    "",
		plain:   "~",
		kaomoji: "(｡•́︿•̀｡)",
		squares: "⬛",
	},
	Volume: {
		emoji:   "🔊",
		nerd:    "",
		plain:   "vol",
		kaomoji: "ヽ(°〇°)ﾉ",
		squares: "🟧",
	},
}
