// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tubecli/tube/constant"
	"github.com/tubecli/tube/filesystem"
	"github.com/tubecli/tube/key"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "TUBE_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// The path can be overridden via the TUBE_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History resolves the absolute path to the playback history file.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Queries resolves the absolute path to the search query suggestion registry.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

// Downloads resolves the directory downloads are written to.
// Falls back to the working directory when downloads.path is unset.
func Downloads() string {
	if custom := viper.GetString(key.DownloadsPath); custom != "" {
		return ensureDir(custom)
	}
	return lo.Must(os.Getwd())
}

// Temp resolves a volatile directory for transient artifacts such as IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
