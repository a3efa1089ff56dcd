package player

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Command names understood by the player.
const (
	cmdLoadFile        = "loadfile"
	cmdSeek            = "seek"
	cmdSetProperty     = "set_property"
	cmdObserveProperty = "observe_property"
	cmdAdd             = "add"
	cmdQuit            = "quit"
)

// LoadMode controls what happens to the current playlist on Load.
type LoadMode string

const (
	LoadReplace    LoadMode = "replace"
	LoadAppend     LoadMode = "append"
	LoadAppendPlay LoadMode = "append-play"
)

// SeekMode selects how the seek offset is interpreted.
type SeekMode string

const (
	SeekRelative SeekMode = "relative"
	SeekAbsolute SeekMode = "absolute"
)

// Command is a player method and its ordered arguments.
// Build commands with the constructors in this file.
type Command struct {
	Name string
	Args []any
}

// Load plays a URL or local file.
func Load(target string, mode LoadMode) Command {
	return Command{Name: cmdLoadFile, Args: []any{target, string(mode)}}
}

// Seek moves the playback position.
func Seek(seconds float64, mode SeekMode) Command {
	return Command{Name: cmdSeek, Args: []any{seconds, string(mode)}}
}

// SetProperty assigns a property value. Integer values are carried as
// float64, the only numeric type the wire format decodes to.
func SetProperty(name string, value any) Command {
	return Command{Name: cmdSetProperty, Args: []any{name, wireNumber(value)}}
}

// ObserveProperty subscribes to change events for a property under an observer id.
func ObserveProperty(id int64, name string) Command {
	return Command{Name: cmdObserveProperty, Args: []any{id, name}}
}

// Add increments a numeric property by delta.
func Add(name string, delta float64) Command {
	return Command{Name: cmdAdd, Args: []any{name, delta}}
}

// Quit asks the player to exit.
func Quit() Command {
	return Command{Name: cmdQuit}
}

// Wire returns the command as the ordered argument list sent to the player.
func (c Command) Wire() []any {
	return append([]any{c.Name}, c.Args...)
}

func (c Command) String() string {
	return fmt.Sprint(c.Wire())
}

// Validate checks the command against the shape its constructor produces.
func (c Command) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidCommand, c.Name, fmt.Sprintf(format, args...))
	}

	switch c.Name {
	case cmdLoadFile:
		if len(c.Args) != 2 {
			return invalid("want target and mode")
		}
		target, _ := c.Args[0].(string)
		if err := validateTarget(target); err != nil {
			return invalid("%v", err)
		}
		switch LoadMode(fmt.Sprint(c.Args[1])) {
		case LoadReplace, LoadAppend, LoadAppendPlay:
		default:
			return invalid("unknown load mode %v", c.Args[1])
		}
	case cmdSeek:
		if len(c.Args) != 2 {
			return invalid("want offset and mode")
		}
		if _, ok := c.Args[0].(float64); !ok {
			return invalid("offset must be a number")
		}
		switch SeekMode(fmt.Sprint(c.Args[1])) {
		case SeekRelative, SeekAbsolute:
		default:
			return invalid("unknown seek mode %v", c.Args[1])
		}
	case cmdSetProperty:
		if len(c.Args) != 2 {
			return invalid("want name and value")
		}
		if err := validateName(c.Args[0]); err != nil {
			return invalid("%v", err)
		}
		if _, err := json.Marshal(c.Args[1]); err != nil {
			return invalid("value not encodable: %v", err)
		}
	case cmdObserveProperty:
		if len(c.Args) != 2 {
			return invalid("want id and name")
		}
		if id, ok := c.Args[0].(int64); !ok || id <= 0 {
			return invalid("observer id must be positive")
		}
		if err := validateName(c.Args[1]); err != nil {
			return invalid("%v", err)
		}
	case cmdAdd:
		if len(c.Args) != 2 {
			return invalid("want name and delta")
		}
		if err := validateName(c.Args[0]); err != nil {
			return invalid("%v", err)
		}
		if _, ok := c.Args[1].(float64); !ok {
			return invalid("delta must be a number")
		}
	case cmdQuit:
		if len(c.Args) != 0 {
			return invalid("takes no arguments")
		}
	case "":
		return fmt.Errorf("%w: empty command", ErrInvalidCommand)
	default:
		return fmt.Errorf("%w: unsupported command %q", ErrInvalidCommand, c.Name)
	}

	return nil
}

func wireNumber(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

func validateName(v any) error {
	name, ok := v.(string)
	if !ok || name == "" {
		return fmt.Errorf("property name must be a non-empty string")
	}
	if strings.ContainsFunc(name, isControl) {
		return fmt.Errorf("property name contains control characters")
	}
	return nil
}

// validateTarget rejects load targets that the player could read as options.
func validateTarget(target string) error {
	t := strings.TrimSpace(target)
	if t == "" {
		return fmt.Errorf("empty target")
	}
	if strings.ContainsFunc(t, isControl) {
		return fmt.Errorf("control characters in target")
	}
	if strings.HasPrefix(t, "-") {
		return fmt.Errorf("target must not start with '-'")
	}

	if strings.Contains(t, "://") {
		u, err := url.Parse(t)
		if err != nil {
			return fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return nil
		default:
			return fmt.Errorf("unsupported URL scheme %q", u.Scheme)
		}
	}

	if filepath.Clean(t) == "." {
		return fmt.Errorf("target is not a file")
	}
	return nil
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
