package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/naming-server/internal/adminclient"
	"github.com/marmos91/naming-server/internal/cliutil"
)

// ssCmd is the parent command for storage-server introspection.
var ssCmd = &cobra.Command{
	Use:   "ss",
	Short: "Storage server introspection",
}

var ssListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered storage servers",
	RunE:  runSSList,
}

// ssTable renders []adminclient.StorageServer for cliutil.PrintTable.
type ssTable []adminclient.StorageServer

func (t ssTable) Headers() []string {
	return []string{"ID", "IP", "NM_PORT", "CLIENT_PORT", "STATE", "LAST_HEARTBEAT"}
}

func (t ssTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, s := range t {
		rows = append(rows, []string{
			s.ID, s.IP,
			fmt.Sprintf("%d", s.NMPort),
			fmt.Sprintf("%d", s.ClientPort),
			s.State, s.LastHeartbeat,
		})
	}
	return rows
}

func runSSList(cmd *cobra.Command, args []string) error {
	servers, err := client().ListStorageServers()
	if err != nil {
		return fmt.Errorf("failed to list storage servers: %w", err)
	}
	if len(servers) == 0 {
		fmt.Println("No registered storage servers.")
		return nil
	}
	cliutil.PrintTable(os.Stdout, ssTable(servers))
	return nil
}

func init() {
	ssCmd.AddCommand(ssListCmd)
}
