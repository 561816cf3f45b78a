// Command nsctl is the naming server's operator CLI: it talks only to the
// admin HTTP API (never the client/SS wire protocol) to inspect storage
// servers, users, and the file registry, and to trigger a graceful shutdown.
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/naming-server/cmd/nsctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
