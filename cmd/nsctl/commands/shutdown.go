package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/naming-server/internal/cliutil"
)

var shutdownForce bool

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Gracefully shut down the naming server",
	Long: `Trigger the same graceful shutdown path as SIGTERM or the console
"SHUTDOWN" command, via the admin API's POST /shutdown.`,
	RunE: runShutdown,
}

func runShutdown(cmd *cobra.Command, args []string) error {
	confirmed, err := cliutil.ConfirmWithForce("Shut down the naming server?", shutdownForce)
	if err != nil {
		if cliutil.IsAborted(err) {
			fmt.Println("\nAborted.")
			return nil
		}
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := client().Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down naming server: %w", err)
	}
	fmt.Println("Shutdown initiated.")
	return nil
}

func init() {
	shutdownCmd.Flags().BoolVarP(&shutdownForce, "force", "f", false, "skip the confirmation prompt")
}
