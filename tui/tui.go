// Package tui is the screen shown while media plays.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tubecli/tube/history"
	"github.com/tubecli/tube/log"
	"github.com/tubecli/tube/player"
	"github.com/tubecli/tube/youtube"
)

// Session is the part of a player session the screen drives.
type Session interface {
	SendCommand(ctx context.Context, cmd player.Command) (any, error)
	ObserveProperty(ctx context.Context, name string, kind player.ValueKind, def any) (*player.ObservedValue, error)
	Running() bool
	Quit()
}

// Searcher finds media for the search popup.
type Searcher interface {
	Search(ctx context.Context, q string) ([]youtube.Item, error)
}

// Options configures the player screen.
type Options struct {
	// Item is what the session was started with.
	Item youtube.Item

	Audio bool
	Music bool

	// Searcher backs the search popup. Searching is disabled when nil.
	Searcher Searcher

	// Surface is optional external hardware such as a MIDI controller. No
	// implementation ships with tube; callers embedding the model supply one.
	// Nil disables surface input.
	Surface ControlSurface

	SeekStep   float64
	VolumeStep float64

	// SaveHistory records the last played item and position on exit.
	SaveHistory bool
}

// Run shows the player screen until the user quits or the player goes away.
// The session is quit before returning.
func Run(ctx context.Context, session Session, options *Options) error {
	defer session.Quit()

	props, err := observe(ctx, session)
	if err != nil {
		return fmt.Errorf("observe player state: %w", err)
	}

	bubble := newBubble(session, props, options)
	_, err = tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	if options.SaveHistory {
		if err := history.Save(bubble.historyEntry()); err != nil {
			log.Warnf("save history: %v", err)
		}
	}

	return err
}

// Observed is a player property the screen polls.
type Observed interface {
	HasChanged() bool
	Float() float64
	Bool() bool
	String() string
}

type properties struct {
	position, duration, volume, pause, title Observed
}

func observe(ctx context.Context, session Session) (*properties, error) {
	get := func(name string, kind player.ValueKind, def any) (Observed, error) {
		return session.ObserveProperty(ctx, name, kind, def)
	}

	var (
		props properties
		err   error
	)

	if props.position, err = get("playback-time", player.KindNumber, 0.0); err != nil {
		return nil, err
	}
	if props.duration, err = get("duration", player.KindNumber, 0.0); err != nil {
		return nil, err
	}
	if props.volume, err = get("volume", player.KindNumber, 100.0); err != nil {
		return nil, err
	}
	if props.pause, err = get("pause", player.KindBool, false); err != nil {
		return nil, err
	}
	if props.title, err = get("media-title", player.KindString, ""); err != nil {
		return nil, err
	}

	return &props, nil
}
