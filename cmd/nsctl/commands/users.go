package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/naming-server/internal/adminclient"
	"github.com/marmos91/naming-server/internal/cliutil"
)

// usersCmd is the parent command for registered-user introspection.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Registered user introspection",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users",
	RunE:  runUsersList,
}

type usersTable []adminclient.User

func (t usersTable) Headers() []string {
	return []string{"USERNAME", "REGISTERED_AT", "ONLINE"}
}

func (t usersTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, u := range t {
		rows = append(rows, []string{u.Username, u.RegisteredAt, cliutil.BoolToYesNo(u.Online)})
	}
	return rows
}

func runUsersList(cmd *cobra.Command, args []string) error {
	users, err := client().ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println("No registered users.")
		return nil
	}
	cliutil.PrintTable(os.Stdout, usersTable(users))
	return nil
}

func init() {
	usersCmd.AddCommand(usersListCmd)
}
