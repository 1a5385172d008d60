package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zhubert/termhub/internal/bridge"
	"github.com/zhubert/termhub/internal/config"
	"github.com/zhubert/termhub/internal/logger"
	"github.com/zhubert/termhub/internal/platform"
	"github.com/zhubert/termhub/internal/rpc"
	"github.com/zhubert/termhub/internal/shell"
	"github.com/zhubert/termhub/internal/term"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON-RPC server on stdin/stdout",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	defer logger.Close()

	plat := platform.NewReal()
	resolver := shell.NewResolver(plat)

	manager := term.NewManager(term.NewPtyStarter(), resolver, plat, cfg.ManagerSettings())
	defer manager.Destroy()

	events := bridge.New(manager)
	defer events.Close()

	server := rpc.NewServer(os.Stdin, os.Stdout, manager, resolver, events)
	defer server.Close()

	if err := server.Run(); err != nil {
		return fmt.Errorf("rpc server error: %w", err)
	}
	return nil
}
