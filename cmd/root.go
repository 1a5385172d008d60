package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zhubert/termhub/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "termhub",
	Short: "Terminal session manager with a JSON-RPC control plane",
	Long: `Termhub manages pseudo-terminal shell sessions on behalf of UI frontends.
It spawns shells, fans their output out to observers, enforces a global
session limit, and reclaims orphaned sessions. Frontends drive it over
newline-delimited JSON-RPC on stdin/stdout.`,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
}

func initLogging() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("termhub %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("termhub %s\n", version)
}
