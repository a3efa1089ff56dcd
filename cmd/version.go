package cmd

import (
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tubecli/tube/color"
	"github.com/tubecli/tube/constant"
	"github.com/tubecli/tube/style"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Display only the version string without metadata")
}

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint": style.Faint,
	"bold":  style.Bold,
	"red":   style.Fg(color.YouTube),
}).Parse(`{{ red "▶" }} {{ bold .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Build Date" }}      {{ bold .BuiltAt }}
  {{ faint "Built By" }}        {{ bold .BuiltBy }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}
  {{ faint "Player" }}          {{ bold .Player }}
  {{ faint "Downloader" }}      {{ bold .Downloader }}
`))

// versionCmd displays application version and build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build metadata",
	Long:  "Display the current application version, build revision, platform and the external tools in use.",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		tools := detectTools()
		info := struct {
			App, Version, Revision, BuiltAt, BuiltBy string
			OS, Arch                                 string
			Player, Downloader                       string
		}{
			App:        constant.App,
			Version:    constant.Version,
			Revision:   constant.Revision,
			BuiltAt:    strings.TrimSpace(constant.BuiltAt),
			BuiltBy:    constant.BuiltBy,
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Player:     tools.Player.Path.OrElse(tools.Player.Name + " (not found)"),
			Downloader: tools.Downloader.Path.OrElse(tools.Downloader.Name + " (not found)"),
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
