// Package log provides leveled, file-backed logging on top of logrus.
//
// Logging is opt-in: unless logs.write is enabled every emitter is a no-op,
// so the terminal UI is never disturbed by diagnostics.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tubecli/tube/filesystem"
	"github.com/tubecli/tube/key"
	"github.com/tubecli/tube/where"
)

var enabled bool

// Setup initializes the logging subsystem, including file handles, formatting, and severity levels based on global configuration.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	if exists := lo.Must(filesystem.API().Exists(path)); !exists {
		lo.Must(filesystem.API().Create(path))
	}

	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	configure(f, viper.GetBool(key.LogsJson), viper.GetString(key.LogsLevel))
	return nil
}

func configure(out io.Writer, json bool, level string) {
	logrus.SetOutput(out)

	if json {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// Fields is a set of structured key/value pairs attached to an entry.
type Fields = logrus.Fields

// Entry is a logger bound to a fixed set of fields.
type Entry struct {
	entry *logrus.Entry
}

// With returns an entry carrying the given fields.
func With(fields Fields) Entry {
	return Entry{entry: logrus.WithFields(fields)}
}

// With extends the entry with more fields.
func (e Entry) With(fields Fields) Entry {
	return Entry{entry: e.entry.WithFields(fields)}
}

func (e Entry) Errorf(format string, args ...any) {
	if enabled {
		e.entry.Errorf(format, args...)
	}
}

func (e Entry) Warnf(format string, args ...any) {
	if enabled {
		e.entry.Warnf(format, args...)
	}
}

func (e Entry) Infof(format string, args ...any) {
	if enabled {
		e.entry.Infof(format, args...)
	}
}

func (e Entry) Debugf(format string, args ...any) {
	if enabled {
		e.entry.Debugf(format, args...)
	}
}

func (e Entry) Tracef(format string, args ...any) {
	if enabled {
		e.entry.Tracef(format, args...)
	}
}

func Error(args ...any) {
	if enabled {
		logrus.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}

func Info(args ...any) {
	if enabled {
		logrus.Info(args...)
	}
}

func Infof(format string, args ...any) {
	if enabled {
		logrus.Infof(format, args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}
