package history

import (
	"fmt"
	"time"

	"github.com/tubecli/tube/util"
)

// Entry is one played item preserved in the user's history.
type Entry struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Uploader string `json:"uploader,omitempty"`
	Audio    bool   `json:"audio"`

	// Position and Duration are in seconds.
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`

	PlayedAt time.Time `json:"played_at"`
}

func (e *Entry) key() string {
	return e.URL
}

// Progress returns the watched share in the range [0, 1].
func (e *Entry) Progress() float64 {
	if e.Duration <= 0 {
		return 0
	}
	return min(e.Position/e.Duration, 1)
}

func (e *Entry) String() string {
	if e.Duration <= 0 {
		return e.Title
	}
	return fmt.Sprintf("%s  %s / %s", e.Title, util.FormatDuration(e.Position), util.FormatDuration(e.Duration))
}
