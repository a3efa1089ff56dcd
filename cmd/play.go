package cmd

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tubecli/tube/youtube"
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolP("audio", "a", false, "Play audio only")
	playCmd.Flags().BoolP("empty", "e", false, "Start the player without media and search from the player screen")
}

// playCmd plays a URL or the chosen result of a search.
var playCmd = &cobra.Command{
	Use:     "play [url or query]",
	Short:   "Play a URL or search and play the chosen result",
	Example: "  tube play lofi hip hop\n  tube play -a https://www.youtube.com/watch?v=jfKfPfyJRdk",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			audio = lo.Must(cmd.Flags().GetBool("audio"))
			empty = lo.Must(cmd.Flags().GetBool("empty"))
			tools = detectTools()
			ctx   = cmd.Context()
		)

		if empty {
			handleErr(playItem(ctx, tools, youtube.Item{}, audio))
			return
		}

		target := strings.TrimSpace(strings.Join(args, " "))
		if target == "" {
			var err error
			target, err = askQuery("Search or paste a URL")
			handleErr(err)
		}

		if !youtube.IsURL(target) {
			handleErr(tools.RequireSearch())
		}

		item, err := resolve(ctx, newClient(tools), target)
		handleErr(err)
		handleErr(playItem(ctx, tools, item, audio))
	},
}
