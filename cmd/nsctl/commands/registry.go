package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/naming-server/internal/adminclient"
	"github.com/marmos91/naming-server/internal/cliutil"
)

// registryCmd is the parent command for the file registry.
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "File registry introspection",
}

var registryDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the file registry",
	RunE:  runRegistryDump,
}

type registryTable []adminclient.RegistryEntry

func (t registryTable) Headers() []string {
	return []string{"NAME", "OWNER", "STORAGE_SERVER", "FOLDER", "SIZE", "ACL"}
}

func (t registryTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{
			e.Name, e.Owner, e.StorageServerID,
			cliutil.EmptyOr(e.Folder, "/"),
			fmt.Sprintf("%d", e.Size),
			cliutil.JoinOr(e.ACL, "-"),
		})
	}
	return rows
}

func runRegistryDump(cmd *cobra.Command, args []string) error {
	entries, err := client().DumpRegistry()
	if err != nil {
		return fmt.Errorf("failed to dump registry: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("Registry is empty.")
		return nil
	}
	cliutil.PrintTable(os.Stdout, registryTable(entries))
	return nil
}

func init() {
	registryCmd.AddCommand(registryDumpCmd)
}
