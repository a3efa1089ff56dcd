package cmd

import (
	"os"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/tubecli/tube/color"
	"github.com/tubecli/tube/config"
	"github.com/tubecli/tube/style"
	"github.com/tubecli/tube/where"
)

type whereTarget struct {
	name     string
	where    func() string
	argLong  string
	argShort mo.Option[string]
	hidden   bool
}

var wherePaths = []*whereTarget{
	{"Config", where.Config, "config", mo.Some("c"), false},
	{"Config file", config.Path, "config-file", mo.None[string](), true},
	{"Downloads", where.Downloads, "downloads", mo.Some("d"), false},
	{"History", where.History, "history", mo.None[string](), false},
	{"Logs", where.Logs, "logs", mo.Some("l"), false},
	{"Cache", where.Cache, "cache", mo.None[string](), true},
	{"Queries", where.Queries, "queries", mo.None[string](), true},
	{"Temp", where.Temp, "temp", mo.None[string](), true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, t := range wherePaths {
		help := t.name + " path"
		if short, ok := t.argShort.Get(); ok {
			whereCmd.Flags().BoolP(t.argLong, short, false, help)
		} else {
			whereCmd.Flags().Bool(t.argLong, false, help)
		}

		if t.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(t.argLong))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t *whereTarget, _ int) string {
		return t.argLong
	})...)

	whereCmd.SetOut(os.Stdout)
}

// whereCmd prints where the application keeps its files.
var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Print where configuration, history, logs and downloads are kept",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range wherePaths {
			if lo.Must(cmd.Flags().GetBool(t.argLong)) {
				cmd.Println(t.where())
				return
			}
		}

		header := style.New().Bold(true).Foreground(color.Purple).Render
		visible := lo.Reject(wherePaths, func(t *whereTarget, _ int) bool { return t.hidden })

		for i, t := range visible {
			cmd.Printf("%s %s\n", header(t.name+"?"), style.Fg(color.Yellow)("--"+t.argLong))
			cmd.Println(t.where())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
