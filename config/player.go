package config

import (
	"time"

	"github.com/spf13/viper"
	"github.com/tubecli/tube/key"
	"github.com/tubecli/tube/player"
)

// PlayerOptions builds spawn options for the player from the active configuration.
// The IPC endpoint path is left empty so a unique one is generated per session.
func PlayerOptions() player.SpawnOptions {
	opts := player.DefaultSpawnOptions()

	if bin := viper.GetString(key.PlayerBinary); bin != "" {
		opts.Binary = bin
	}
	opts.ExtraArgs = viper.GetStringSlice(key.PlayerExtraArgs)

	if ms := viper.GetInt(key.PlayerConnectTimeoutMs); ms > 0 {
		opts.ConnectTimeout = time.Duration(ms) * time.Millisecond
	}
	if ms := viper.GetInt(key.PlayerCommandTimeoutMs); ms > 0 {
		opts.CommandTimeout = time.Duration(ms) * time.Millisecond
	}
	if ms := viper.GetInt(key.PlayerTerminateTimeoutMs); ms > 0 {
		opts.TerminateTimeout = time.Duration(ms) * time.Millisecond
	}

	return opts
}

// PlaybackMode resolves the default playback mode, honoring an explicit override.
func PlaybackMode(audioOnly bool) player.PlaybackMode {
	if audioOnly || viper.GetBool(key.PlayerAudioOnly) {
		return player.AudioOnly
	}
	return player.AudioVideo
}
