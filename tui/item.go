package tui

import (
	"fmt"

	"github.com/tubecli/tube/style"
	"github.com/tubecli/tube/util"
	"github.com/tubecli/tube/youtube"
)

type listItem struct {
	item youtube.Item
}

func (t *listItem) Title() string {
	return t.item.Title
}

func (t *listItem) Description() string {
	var duration string
	if t.item.Duration > 0 {
		duration = util.FormatDuration(t.item.Duration.Seconds())
	} else {
		duration = "live"
	}

	if t.item.Uploader == "" {
		return style.Faint(duration)
	}
	return fmt.Sprintf("%s %s", t.item.Uploader, style.Faint(duration))
}

func (t *listItem) FilterValue() string {
	return t.item.Title
}
