// Package commands implements the CLI commands for nsctl.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/naming-server/internal/adminclient"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "nsctl",
	Short: "Naming server control - operator CLI",
	Long: `nsctl is the operator CLI for the naming server's admin HTTP API.

Use this tool to inspect connected storage servers, registered users, and
the file registry, and to trigger a graceful shutdown.

Use "nsctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func client() *adminclient.Client {
	return adminclient.New(serverURL)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9090", "admin API base URL")

	rootCmd.AddCommand(ssCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(shutdownCmd)
}
