package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/mo"
	"github.com/tubecli/tube/constant"
	"github.com/tubecli/tube/history"
	"github.com/tubecli/tube/internal/ui"
	"github.com/tubecli/tube/style"
	"github.com/tubecli/tube/util"
	"github.com/tubecli/tube/youtube"
)

const (
	tickInterval = 50 * time.Millisecond
	commandWait  = 3 * time.Second
)

type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	keymap        *statefulKeymap

	// components
	progressC progress.Model
	helpC     help.Model
	inputC    textinput.Model
	resultsC  list.Model
	spinnerC  spinner.Model
	notifier  *ui.Model

	session commander
	props   *properties
	surface ControlSurface
	options *Options

	// pending holds key intents until the next tick; inflight is set while a batch runs.
	pending  []intent
	inflight bool

	current  youtube.Item
	title    string
	position float64
	duration float64
	volume   float64
	paused   bool

	searching        bool
	searchSuggestion mo.Option[string]

	width, height int
	quitting      bool
}

// commander is what the bubble needs from a session once properties are observed.
type commander interface {
	Running() bool
	sender
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}
	b.statesHistory.Push(b.state)
	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

func (b *statefulBubble) resetState() {
	for b.statesHistory.Len() > 0 {
		b.statesHistory.Pop()
	}
	b.setState(playerState)
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y

	b.resultsC.SetSize(width-xx, height-yy)
	b.resultsC.Help.Width = width - xx
	b.progressC.Width = max(b.width, 10)
	b.inputC.Width = max(b.width-len(b.inputC.Prompt)-1, 10)
	b.helpC.Width = b.width
}

// historyEntry describes what was playing when the screen closed.
func (b *statefulBubble) historyEntry() *history.Entry {
	title := b.current.Title
	if title == "" {
		title = b.title
	}

	return &history.Entry{
		Title:    title,
		URL:      b.current.URL,
		Uploader: b.current.Uploader,
		Audio:    b.options.Audio,
		Position: b.position,
		Duration: b.duration,
	}
}

func newBubble(session commander, props *properties, options *Options) *statefulBubble {
	bubble := &statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        newStatefulKeymap(),
		notifier:      &ui.Model{},

		session: session,
		props:   props,
		surface: options.Surface,
		options: options,

		current: options.Item,
		title:   options.Item.Title,
		volume:  100,
	}

	if bubble.options.SeekStep <= 0 {
		bubble.options.SeekStep = 5
	}
	if bubble.options.VolumeStep <= 0 {
		bubble.options.VolumeStep = 5
	}

	bubble.helpC = help.New()

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	accent := style.Accent(options.Music)
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(accent)

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = fmt.Sprintf("Search or paste a URL (%s v%s)", constant.App, constant.Version)
	bubble.inputC.CharLimit = 120
	bubble.inputC.Prompt = "> "

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(accent).
		Foreground(accent).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	bubble.resultsC = list.New([]list.Item{}, delegate, 0, 0)
	bubble.resultsC.KeyMap = bubble.keymap.forList()
	bubble.resultsC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
	bubble.resultsC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return bubble.keymap.FullHelp()[0]
	}
	bubble.resultsC.Title = "Results"
	bubble.resultsC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(accent).Padding(0, 1)
	bubble.resultsC.SetShowStatusBar(false)
	bubble.resultsC.SetFilteringEnabled(false)
	bubble.resultsC.SetStatusBarItemName("result", "results")

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return bubble
}
