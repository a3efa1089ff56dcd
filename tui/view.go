package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tubecli/tube/color"
	"github.com/tubecli/tube/icon"
	"github.com/tubecli/tube/style"
	"github.com/tubecli/tube/util"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	if b.quitting {
		return ""
	}

	var output string

	switch b.state {
	case playerState:
		output = b.viewPlayer()
	case searchState:
		output = b.viewSearch()
	case resultsState:
		output = b.viewResults()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewPlayer() string {
	mode := icon.Get(icon.Video)
	if b.options.Audio {
		mode = icon.Get(icon.Audio)
	}

	status := icon.Get(icon.Play)
	if b.paused {
		status = icon.Get(icon.Pause)
	}

	var ratio float64
	if b.duration > 0 {
		ratio = util.Clamp(b.position/b.duration, 0, 1)
	}

	timing := fmt.Sprintf("%s / %s", util.FormatDuration(b.position), util.FormatDuration(b.duration))
	if b.duration <= 0 {
		timing = util.FormatDuration(b.position)
	}

	lines := []string{
		style.SourceTitle(b.options.Music)(strings.TrimSpace(mode + " Now Playing")),
		"",
		style.Truncate(b.width)(style.Bold(b.titleOrPlaceholder())),
	}

	if b.current.Uploader != "" {
		lines = append(lines, style.Truncate(b.width)(style.Faint(b.current.Uploader)))
	}

	lines = append(lines,
		"",
		b.progressC.ViewAs(ratio),
		fmt.Sprintf("%s %s   %s %s",
			status,
			timing,
			icon.Get(icon.Volume),
			style.Fg(color.Purple)(fmt.Sprintf("%.0f%%", b.volume)),
		),
	)

	return b.renderLines(true, lines)
}

func (b *statefulBubble) titleOrPlaceholder() string {
	if b.title != "" {
		return b.title
	}
	return "Waiting for media..."
}

func (b *statefulBubble) viewSearch() string {
	lines := []string{
		style.Title("Search"),
		"",
	}

	if b.searching {
		lines = append(lines, b.spinnerC.View()+" Searching "+style.Fg(color.Purple)(b.inputC.Value()))
		return b.renderLines(true, lines)
	}

	lines = append(lines, b.inputC.View())
	if s, ok := b.searchSuggestion.Get(); ok && s != strings.ToLower(strings.TrimSpace(b.inputC.Value())) {
		lines = append(lines, "", style.Faint(icon.Get(icon.Search)+" "+s))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewResults() string {
	return listExtraPaddingStyle.Render(b.resultsC.View())
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
