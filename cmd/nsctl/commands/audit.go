package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/naming-server/internal/adminclient"
	"github.com/marmos91/naming-server/internal/cliutil"
)

// auditCmd is the parent command for the access-control audit trail.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Access-control audit trail",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent access-control decisions",
	RunE:  runAuditList,
}

type auditTable []adminclient.AuditEvent

func (t auditTable) Headers() []string {
	return []string{"TIMESTAMP", "ACTION", "FILENAME", "ACTOR", "TARGET", "DETAIL"}
}

func (t auditTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{
			e.Timestamp, e.Action, e.Filename, e.Actor,
			cliutil.EmptyOr(e.Target, "-"),
			cliutil.EmptyOr(e.Detail, "-"),
		})
	}
	return rows
}

func runAuditList(cmd *cobra.Command, args []string) error {
	events, err := client().AuditLog()
	if err != nil {
		return fmt.Errorf("failed to fetch audit log: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("Audit log is empty.")
		return nil
	}
	cliutil.PrintTable(os.Stdout, auditTable(events))
	return nil
}

func init() {
	auditCmd.AddCommand(auditListCmd)
}
