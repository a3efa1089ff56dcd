// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tubecli/tube/color"
	"github.com/tubecli/tube/constant"
	"github.com/tubecli/tube/key"
	"github.com/tubecli/tube/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerBinary, constant.PlayerBinary, "Player executable to spawn.\nMust speak the mpv JSON IPC protocol")
	register(key.PlayerAudioOnly, false, "Start the player without a video output by default")
	register(key.PlayerExtraArgs, []string{}, "Additional arguments passed to the player as-is")
	register(key.PlayerConnectTimeoutMs, 5000, "How long to wait for the player IPC endpoint to appear, in milliseconds")
	register(key.PlayerCommandTimeoutMs, 3000, "How long to wait for a reply to a single player command, in milliseconds")
	register(key.PlayerTerminateTimeoutMs, 3000, "Grace period before the player process is killed on exit, in milliseconds")
	register(key.PlayerSeekStep, 5, "Seconds to seek with the left and right keys")
	register(key.PlayerVolumeStep, 5, "Volume change applied by the up and down keys")
	register(key.YoutubeSearchLimit, 15, "Limit of search results to show")
	register(key.YoutubeMusic, false, "Search Youtube Music instead of Youtube")
	register(key.DownloadsPath, "", "Directory to save downloads into.\nDefaults to the current directory")
	register(key.DownloadsAudioFormat, "mp3", "Audio format for downloads.\nAvailable options are: mp3, m4a, opus, flac, wav")
	register(key.DownloadsVideoFormat, "mp4", "Container format for video downloads.\nAvailable options are: mp4, mkv, webm")
	register(key.HistorySaveOnPlay, true, "Save history on playback exit")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
