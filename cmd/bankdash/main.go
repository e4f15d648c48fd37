// Command bankdash runs one dashboard operation against the banking API and
// prints the resulting state as JSON.
package main

import (
	"errors"
	"fmt"
	"os"
)

var Version = "dev"

func main() {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
