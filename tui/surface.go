package tui

import (
	"github.com/tubecli/tube/player"
	"github.com/tubecli/tube/util"
)

// SurfaceEventKind tells what an external control surface asked for.
type SurfaceEventKind int

const (
	// SurfaceVolume sets an absolute volume in the range [0, 100].
	SurfaceVolume SurfaceEventKind = iota
	// SurfacePause toggles pause.
	SurfacePause
)

// SurfaceEvent is one input from a control surface.
type SurfaceEvent struct {
	Kind   SurfaceEventKind
	Volume float64
}

// ControlSurface is external hardware driving volume and pause next to the keyboard.
type ControlSurface interface {
	// Events delivers inputs; it is drained without blocking on every tick.
	Events() <-chan SurfaceEvent

	// ShowVolume reflects the player's volume back on the surface.
	ShowVolume(volume float64)
}

type intentKind int

const (
	intentPause intentKind = iota
	intentSeek
	intentVolume
	intentLoad
)

// intent is a queued key action.
type intent struct {
	kind   intentKind
	delta  float64
	target string
}

// drainSurface collects every event already waiting on the surface.
func drainSurface(s ControlSurface) []SurfaceEvent {
	if s == nil {
		return nil
	}

	var events []SurfaceEvent
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// plan turns one tick's input into player commands. Surface events go first:
// only the last absolute volume counts, every pause toggle is applied in
// order. Queued key intents follow in arrival order. paused is the pause
// state before the tick; the state after all toggles is returned.
func plan(events []SurfaceEvent, intents []intent, paused bool) ([]player.Command, bool) {
	var (
		commands []player.Command
		volume   *float64
	)

	for _, ev := range events {
		switch ev.Kind {
		case SurfaceVolume:
			v := util.Clamp(ev.Volume, 0, 100)
			volume = &v
		case SurfacePause:
			paused = !paused
			commands = append(commands, player.SetProperty("pause", paused))
		}
	}

	if volume != nil {
		commands = append(commands, player.SetProperty("volume", *volume))
	}

	for _, in := range intents {
		switch in.kind {
		case intentPause:
			paused = !paused
			commands = append(commands, player.SetProperty("pause", paused))
		case intentSeek:
			commands = append(commands, player.Seek(in.delta, player.SeekRelative))
		case intentVolume:
			commands = append(commands, player.Add("volume", in.delta))
		case intentLoad:
			commands = append(commands, player.Load(in.target, player.LoadReplace))
		}
	}

	return commands, paused
}
