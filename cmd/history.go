package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tubecli/tube/color"
	"github.com/tubecli/tube/history"
	"github.com/tubecli/tube/icon"
	"github.com/tubecli/tube/style"
	"github.com/tubecli/tube/util"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("clear", "c", false, "Forget everything played")
	historyCmd.Flags().StringP("remove", "r", "", "Forget a single URL")
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.MarkFlagsMutuallyExclusive("clear", "remove", "json")
}

// historyCmd lists what was played, most recent first.
var historyCmd = &cobra.Command{
	Use:   "history [filter]",
	Short: "List played media, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("clear")) {
			handleErr(history.Clear())
			fmt.Printf("%s History cleared\n", icon.Get(icon.Success))
			return
		}

		if url := lo.Must(cmd.Flags().GetString("remove")); url != "" {
			handleErr(history.Remove(url))
			fmt.Printf("%s Removed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(url))
			return
		}

		entries, err := history.Sorted()
		handleErr(err)
		entries = filterEntries(entries, strings.Join(args, " "))

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Printf("%s Nothing found\n", icon.Get(icon.History))
			return
		}

		cmd.Println(style.Faint(util.Quantify(len(entries), "entry", "entries")))
		for _, e := range entries {
			mediaIcon := lo.Ternary(e.Audio, icon.Get(icon.Audio), icon.Get(icon.Video))
			cmd.Printf("%s %s\n", mediaIcon, style.Bold(e.Title))
			cmd.Printf("  %s\n", style.Faint(e.URL))
			if e.Duration > 0 {
				cmd.Printf(
					"  %s / %s  %s\n",
					util.FormatDuration(e.Position),
					util.FormatDuration(e.Duration),
					style.Fg(color.Green)(fmt.Sprintf("%.0f%%", e.Progress()*100)),
				)
			}
		}
	},
}

// filterEntries keeps the entries whose title or uploader fuzzily matches filter.
func filterEntries(entries []*history.Entry, filter string) []*history.Entry {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return entries
	}

	return lo.Filter(entries, func(e *history.Entry, _ int) bool {
		return fuzzy.MatchNormalizedFold(filter, e.Title) || fuzzy.MatchNormalizedFold(filter, e.Uploader)
	})
}
