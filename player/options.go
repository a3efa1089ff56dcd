// Package player drives an external mpv process over its JSON IPC endpoint.
//
// A session (IPC) owns the spawned process, the connection to its IPC
// endpoint and a single reader goroutine. Commands are correlated with their
// replies through request ids; property-change events are routed to observer
// handles. Closing the session, on any path, releases the process and the
// endpoint.
package player

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/tubecli/tube/constant"
)

// PlaybackMode selects how the player presents media.
type PlaybackMode int

const (
	AudioVideo PlaybackMode = iota
	AudioOnly
)

func (m PlaybackMode) String() string {
	switch m {
	case AudioOnly:
		return "audio"
	case AudioVideo:
		return "video"
	default:
		return "unknown"
	}
}

// SpawnOptions configures a player session.
type SpawnOptions struct {
	// Binary is the player executable, resolved through PATH.
	Binary string

	// EndpointPath is the IPC socket or named pipe. Generated when empty.
	EndpointPath string

	// ExtraArgs are appended to the computed argument list.
	ExtraArgs []string

	// ConnectTimeout bounds the wait for the endpoint to become connectable.
	ConnectTimeout time.Duration

	// CommandTimeout bounds the wait for each reply. Zero means only the caller's context applies.
	CommandTimeout time.Duration

	// TerminateTimeout is the grace period before the process is killed.
	TerminateTimeout time.Duration
}

// DefaultSpawnOptions returns options suitable for an mpv on PATH.
func DefaultSpawnOptions() SpawnOptions {
	return SpawnOptions{
		Binary:           constant.PlayerBinary,
		ConnectTimeout:   5 * time.Second,
		CommandTimeout:   3 * time.Second,
		TerminateTimeout: 3 * time.Second,
	}
}

// withEndpoint returns a copy of the options with a unique endpoint path filled in.
func (o SpawnOptions) withEndpoint() (SpawnOptions, error) {
	if o.EndpointPath != "" {
		return o, nil
	}

	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return o, fmt.Errorf("generate endpoint name: %w", err)
	}

	o.EndpointPath = endpointPath(fmt.Sprintf("%s-%x", constant.App, b))
	return o, nil
}

// args computes the player argument list for the given mode.
func (o SpawnOptions) args(mode PlaybackMode) []string {
	args := []string{
		"--idle=yes",
		"--no-terminal",
		"--input-ipc-server=" + o.EndpointPath,
	}

	switch mode {
	case AudioOnly:
		args = append(args, "--no-video", "--force-window=no")
	default:
		args = append(args, "--force-window=yes")
	}

	return append(args, o.ExtraArgs...)
}
