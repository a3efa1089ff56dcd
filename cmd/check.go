package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tubecli/tube/capability"
	"github.com/tubecli/tube/color"
	"github.com/tubecli/tube/icon"
	"github.com/tubecli/tube/style"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd reports which external tools were found.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the player and the downloader are installed",
	Run: func(cmd *cobra.Command, args []string) {
		tools := detectTools()
		cmd.Println(renderTools(tools))

		for _, err := range []error{tools.RequirePlayback(), tools.RequireSearch(), tools.RequireDownload(true)} {
			if err != nil {
				cmd.Println(renderMissing(err))
				return
			}
		}
	},
}

func renderTools(tools capability.Set) string {
	nameStyle := style.New().Bold(true).Width(10)

	var rows []string
	for _, tool := range tools.Tools() {
		path, ok := tool.Path.Get()
		status := style.Fg(color.Green)(icon.Get(icon.Success))
		if !ok {
			status = style.Fg(color.Red)(icon.Get(icon.Fail))
			path = style.Faint("not found")
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, status, " ", nameStyle.Render(tool.Name), path))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderMissing(err error) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", err.Error()))
}
