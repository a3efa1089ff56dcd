package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/tubecli/tube/history"
	"github.com/tubecli/tube/internal/ui"
	"github.com/tubecli/tube/log"
	"github.com/tubecli/tube/open"
	"github.com/tubecli/tube/player"
	"github.com/tubecli/tube/query"
	"github.com/tubecli/tube/youtube"
)

type sender interface {
	SendCommand(ctx context.Context, cmd player.Command) (any, error)
}

type tickMsg time.Time

// appliedMsg reports the outcome of one batch of player commands.
type appliedMsg struct {
	err          error
	disconnected bool
}

type searchDoneMsg struct {
	query string
	items []youtube.Item
	err   error
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (b *statefulBubble) Init() tea.Cmd {
	return tick()
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, cmd
	case tickMsg:
		return b, tea.Batch(cmd, b.onTick())
	case appliedMsg:
		b.inflight = false
		if msg.disconnected {
			b.quitting = true
			return b, tea.Quit
		}
		if msg.err != nil {
			return b, tea.Batch(cmd, ui.Notify(msg.err.Error()))
		}
		return b, cmd
	case searchDoneMsg:
		return b, tea.Batch(cmd, b.onSearchDone(msg))
	case spinner.TickMsg:
		if !b.searching {
			return b, cmd
		}
		var spinCmd tea.Cmd
		b.spinnerC, spinCmd = b.spinnerC.Update(msg)
		return b, tea.Batch(cmd, spinCmd)
	case tea.KeyMsg:
		// Quits immediately, bypassing the queue.
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			b.quitting = true
			return b, tea.Quit
		}
	}

	var stateCmd tea.Cmd
	switch b.state {
	case playerState:
		stateCmd = b.updatePlayer(msg)
	case searchState:
		stateCmd = b.updateSearch(msg)
	case resultsState:
		stateCmd = b.updateResults(msg)
	}

	return b, tea.Batch(cmd, stateCmd)
}

// onTick applies control-surface events and queued key intents, then polls
// the observed properties.
func (b *statefulBubble) onTick() tea.Cmd {
	if !b.session.Running() {
		b.quitting = true
		return tea.Quit
	}

	b.poll()

	if b.inflight {
		return tick()
	}

	commands, paused := plan(drainSurface(b.surface), b.pending, b.paused)
	b.pending = nil
	if len(commands) == 0 {
		return tick()
	}

	b.paused = paused
	b.inflight = true
	return tea.Batch(b.apply(commands), tick())
}

func (b *statefulBubble) poll() {
	p := b.props
	if p.position.HasChanged() {
		b.position = p.position.Float()
	}
	if p.duration.HasChanged() {
		b.duration = p.duration.Float()
	}
	if p.pause.HasChanged() {
		b.paused = p.pause.Bool()
	}
	if p.title.HasChanged() {
		if t := p.title.String(); t != "" {
			b.title = t
		}
	}
	if p.volume.HasChanged() {
		b.volume = p.volume.Float()
		if b.surface != nil {
			b.surface.ShowVolume(b.volume)
		}
	}
}

// apply sends commands in order. A rejected command does not stop the batch;
// a lost session does.
func (b *statefulBubble) apply(commands []player.Command) tea.Cmd {
	session := b.session
	return func() tea.Msg {
		var first error
		for _, c := range commands {
			ctx, cancel := context.WithTimeout(context.Background(), commandWait)
			_, err := session.SendCommand(ctx, c)
			cancel()

			if err == nil {
				continue
			}
			if errors.Is(err, player.ErrDisconnected) {
				return appliedMsg{err: err, disconnected: true}
			}
			log.Warnf("%s: %v", c, err)
			if first == nil {
				first = err
			}
		}
		return appliedMsg{err: first}
	}
}

func (b *statefulBubble) enqueue(in intent) {
	b.pending = append(b.pending, in)
}

func (b *statefulBubble) updatePlayer(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case bubblesKey.Matches(keyMsg, b.keymap.quit):
		b.quitting = true
		return tea.Quit
	case bubblesKey.Matches(keyMsg, b.keymap.playPause):
		b.enqueue(intent{kind: intentPause})
	case bubblesKey.Matches(keyMsg, b.keymap.seekBack):
		b.enqueue(intent{kind: intentSeek, delta: -b.options.SeekStep})
	case bubblesKey.Matches(keyMsg, b.keymap.seekForward):
		b.enqueue(intent{kind: intentSeek, delta: b.options.SeekStep})
	case bubblesKey.Matches(keyMsg, b.keymap.volumeUp):
		b.enqueue(intent{kind: intentVolume, delta: b.options.VolumeStep})
	case bubblesKey.Matches(keyMsg, b.keymap.volumeDown):
		b.enqueue(intent{kind: intentVolume, delta: -b.options.VolumeStep})
	case bubblesKey.Matches(keyMsg, b.keymap.copyURL):
		return b.copyURL()
	case bubblesKey.Matches(keyMsg, b.keymap.openURL):
		return b.openURL()
	case bubblesKey.Matches(keyMsg, b.keymap.search):
		if b.options.Searcher == nil {
			return ui.Notify("Search is unavailable")
		}
		b.inputC.SetValue("")
		b.searchSuggestion = mo.None[string]()
		b.inputC.Focus()
		b.newState(searchState)
		return textinput.Blink
	case bubblesKey.Matches(keyMsg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}

	return nil
}

func (b *statefulBubble) copyURL() tea.Cmd {
	if b.current.URL == "" {
		return ui.Notify("Nothing to copy")
	}
	if err := clipboard.WriteAll(b.current.URL); err != nil {
		log.Warnf("clipboard: %v", err)
		return ui.Notify("Clipboard unavailable")
	}
	return ui.Notify("Copied URL")
}

func (b *statefulBubble) openURL() tea.Cmd {
	if !youtube.IsURL(b.current.URL) {
		return ui.Notify("Nothing to open")
	}
	if err := open.URL(b.current.URL); err != nil {
		log.Warnf("open: %v", err)
		return ui.Notify("Could not open browser")
	}
	return ui.Notify("Opened in browser")
}

func (b *statefulBubble) updateSearch(msg tea.Msg) tea.Cmd {
	if b.searching {
		return nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(keyMsg, b.keymap.back):
			b.inputC.Blur()
			b.previousState()
			return nil
		case bubblesKey.Matches(keyMsg, b.keymap.acceptSearchSuggestion):
			if s, ok := b.searchSuggestion.Get(); ok {
				b.inputC.SetValue(s)
				b.inputC.CursorEnd()
				b.searchSuggestion = mo.None[string]()
			}
			return nil
		case bubblesKey.Matches(keyMsg, b.keymap.confirm):
			return b.submitSearch()
		}
	}

	var cmd tea.Cmd
	b.inputC, cmd = b.inputC.Update(msg)

	if value := strings.TrimSpace(b.inputC.Value()); value != "" {
		b.searchSuggestion = query.Suggest(value)
	} else {
		b.searchSuggestion = mo.None[string]()
	}

	return cmd
}

func (b *statefulBubble) submitSearch() tea.Cmd {
	q := strings.TrimSpace(b.inputC.Value())
	if q == "" {
		return nil
	}

	b.inputC.Blur()

	if youtube.IsURL(q) {
		b.play(youtube.Item{Title: q, URL: q})
		return nil
	}

	if err := query.Remember(q, 1); err != nil {
		log.Warnf("remember query: %v", err)
	}

	b.searching = true
	searcher := b.options.Searcher
	return tea.Batch(b.spinnerC.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		items, err := searcher.Search(ctx, q)
		return searchDoneMsg{query: q, items: items, err: err}
	})
}

func (b *statefulBubble) onSearchDone(msg searchDoneMsg) tea.Cmd {
	b.searching = false

	if msg.err != nil {
		b.inputC.Focus()
		return ui.Notify(fmt.Sprintf("Search failed: %v", msg.err))
	}
	if len(msg.items) == 0 {
		b.inputC.Focus()
		return ui.Notify(fmt.Sprintf("No results for %q", msg.query))
	}

	items := lo.Map(msg.items, func(item youtube.Item, _ int) list.Item {
		return &listItem{item: item}
	})
	b.resultsC.Title = fmt.Sprintf("Results for %q", msg.query)
	b.resultsC.ResetSelected()
	cmd := b.resultsC.SetItems(items)
	b.newState(resultsState)
	return cmd
}

func (b *statefulBubble) updateResults(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(keyMsg, b.keymap.back):
			b.previousState()
			b.inputC.Focus()
			return nil
		case bubblesKey.Matches(keyMsg, b.keymap.confirm):
			selected, ok := b.resultsC.SelectedItem().(*listItem)
			if !ok {
				return nil
			}
			b.play(selected.item)
			return nil
		}
	}

	var cmd tea.Cmd
	b.resultsC, cmd = b.resultsC.Update(msg)
	return cmd
}

// play queues a load of item and returns to the player. The item being
// replaced is recorded in history first.
func (b *statefulBubble) play(item youtube.Item) {
	if b.options.SaveHistory && b.current.URL != "" {
		if err := history.Save(b.historyEntry()); err != nil {
			log.Warnf("save history: %v", err)
		}
	}

	b.enqueue(intent{kind: intentLoad, target: item.URL})
	b.current = item
	b.title = item.Title
	b.position, b.duration = 0, 0
	b.resetState()
}
