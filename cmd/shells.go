package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/zhubert/termhub/internal/platform"
	"github.com/zhubert/termhub/internal/shell"
)

var shellsCmd = &cobra.Command{
	Use:   "shells",
	Short: "List shells available on this system",
	RunE:  runShells,
}

func init() {
	rootCmd.AddCommand(shellsCmd)
}

var (
	shellNameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	shellPathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	defaultMarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

func runShells(cmd *cobra.Command, args []string) error {
	resolver := shell.NewResolver(platform.NewReal())
	fmt.Fprint(cmd.OutOrStdout(), formatShellList(resolver.ListAvailable(), resolver.ResolveDefault()))
	return nil
}

func formatShellList(shells []shell.Info, def *shell.Info) string {
	if len(shells) == 0 {
		return "No shells found.\n"
	}

	var b strings.Builder
	for _, s := range shells {
		b.WriteString(shellNameStyle.Render(fmt.Sprintf("%-14s", s.Name)))
		b.WriteString(shellPathStyle.Render(s.Path))
		if def != nil && def.Name == s.Name {
			b.WriteString("  ")
			b.WriteString(defaultMarkStyle.Render("(default)"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
