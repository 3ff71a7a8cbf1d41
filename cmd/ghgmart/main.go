// Command ghgmart builds and inspects the emissions and agriculture data
// mart.
package main

import (
	"os"

	"github.com/greenstack-labs/ghgmart/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
