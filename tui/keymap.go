package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/tubecli/tube/color"
	"github.com/tubecli/tube/style"
)

type statefulKeymap struct {
	state state

	quit, forceQuit,
	playPause,
	seekBack, seekForward,
	volumeUp, volumeDown,
	copyURL, openURL,
	search, acceptSearchSuggestion,
	confirm, back,
	up, down,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		seekBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "rewind"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "forward"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("up", "k", "+"),
			key.WithHelp("↑", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("down", "j", "-"),
			key.WithHelp("↓", "volume down"),
		),
		copyURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy url"),
		),
		openURL: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "open in browser"),
		),
		search: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp(style.Fg(color.HiYellow)("o"), style.Fg(color.HiYellow)("search")),
		),
		acceptSearchSuggestion: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept suggestion"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case playerState:
		return h(k.playPause, k.search, k.showHelp, k.quit),
			h(k.playPause, k.seekBack, k.seekForward, k.volumeUp, k.volumeDown, k.copyURL, k.openURL, k.search, k.quit)
	case searchState:
		return to2(h(k.confirm, k.acceptSearchSuggestion, k.back))
	case resultsState:
		return to2(h(withDescription(k.confirm, "play"), k.back))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:      k.up,
		CursorDown:    k.down,
		ShowFullHelp:  k.showHelp,
		CloseFullHelp: k.showHelp,
		ForceQuit:     k.forceQuit,
	}
}

func withDescription(k key.Binding, description string) key.Binding {
	return key.NewBinding(
		key.WithKeys(k.Keys()...),
		key.WithHelp(k.Help().Key, description),
	)
}
