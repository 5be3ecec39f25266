// Command sqlstudio runs the sandboxed SQL exercise platform.
package main

import (
	"os"

	"github.com/sqlstudio-labs/sqlstudio/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
