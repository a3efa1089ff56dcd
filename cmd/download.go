package cmd

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tubecli/tube/youtube"
)

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().BoolP("audio", "a", false, "Download the audio track only")
	downloadCmd.Flags().StringP("format", "f", "", "Audio codec or video container, defaults to the configured one")
	downloadCmd.Flags().StringP("output", "o", "", "Directory to save into, defaults to downloads.path")
	lo.Must0(downloadCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if lo.Must(cmd.Flags().GetBool("audio")) {
			return []string{"mp3", "m4a", "opus", "flac", "wav"}, cobra.ShellCompDirectiveNoFileComp
		}
		return []string{"mp4", "mkv", "webm"}, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(downloadCmd.MarkFlagDirname("output"))
}

// downloadCmd saves a URL or the chosen result of a search to disk.
var downloadCmd = &cobra.Command{
	Use:     "download [url or query]",
	Short:   "Download a URL or search and download the chosen result",
	Aliases: []string{"dl"},
	Example: "  tube download -a -f opus lofi hip hop",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			opts = youtube.DownloadOptions{
				Audio:  lo.Must(cmd.Flags().GetBool("audio")),
				Format: lo.Must(cmd.Flags().GetString("format")),
				Dir:    lo.Must(cmd.Flags().GetString("output")),
			}
			tools = detectTools()
			ctx   = cmd.Context()
		)

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
		handleErr(downloadItem(ctx, tools, item, opts))
	},
}
