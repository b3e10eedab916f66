// Command goshape declares data requirements and checks documents against them.
package main

import (
	"os"

	"github.com/reoring/goshape/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
