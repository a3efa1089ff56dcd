// Package cmd implements the command-line interface for tube.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tubecli/tube/color"
	"github.com/tubecli/tube/constant"
	"github.com/tubecli/tube/history"
	"github.com/tubecli/tube/icon"
	"github.com/tubecli/tube/key"
	"github.com/tubecli/tube/log"
	"github.com/tubecli/tube/style"
	"github.com/tubecli/tube/youtube"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Remember played media and the last position")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnPlay, rootCmd.PersistentFlags().Lookup("write-history")))
}

// rootCmd runs the interactive menu when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "Search, play and download YouTube media from the terminal",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.YouTube).Render("    - Search, play and download YouTube media from the terminal"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(interactive(cmd.Context()))
	},
}

const (
	actionPlay     = "Play"
	actionDownload = "Download"
	actionHistory  = "History"
	actionQuit     = "Quit"
)

// interactive asks what to do until the user quits.
func interactive(ctx context.Context) error {
	for {
		var action string
		err := survey.AskOne(&survey.Select{
			Message: "What do you want to do?",
			Options: []string{actionPlay, actionDownload, actionHistory, actionQuit},
		}, &action)
		if errors.Is(err, terminal.InterruptErr) || action == actionQuit {
			return nil
		}
		if err != nil {
			return err
		}

		switch action {
		case actionPlay, actionDownload:
			err = interactiveMedia(ctx, action == actionDownload)
		case actionHistory:
			err = interactiveHistory(ctx)
		}

		switch {
		case errors.Is(err, terminal.InterruptErr):
			continue
		case errors.Is(err, errNoResults):
			fmt.Printf("%s %s\n", icon.Get(icon.Warn), err)
		case err != nil:
			return err
		}
	}
}

func interactiveMedia(ctx context.Context, download bool) error {
	audio, err := askAudio()
	if err != nil {
		return err
	}

	target, err := askQuery("Search or paste a URL")
	if err != nil {
		return err
	}

	tools := detectTools()
	if err := tools.RequireSearch(); err != nil && !youtube.IsURL(target) {
		return err
	}

	item, err := resolve(ctx, newClient(tools), strings.TrimSpace(target))
	if err != nil {
		return err
	}

	if download {
		return downloadItem(ctx, tools, item, youtube.DownloadOptions{Audio: audio})
	}
	return playItem(ctx, tools, item, audio)
}

func interactiveHistory(ctx context.Context) error {
	entries, err := history.Sorted()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("%s History is empty\n", icon.Get(icon.History))
		return nil
	}

	var index int
	err = survey.AskOne(&survey.Select{
		Message:  "Play again",
		Options:  lo.Map(entries, func(e *history.Entry, _ int) string { return e.String() }),
		PageSize: 10,
	}, &index)
	if err != nil {
		return err
	}

	entry := entries[index]
	return playItem(ctx, detectTools(), entryItem(entry), entry.Audio)
}

func entryItem(e *history.Entry) youtube.Item {
	return youtube.Item{Title: e.Title, URL: e.URL, Uploader: e.Uploader}
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiRed + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
