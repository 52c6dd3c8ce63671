// Command phenix compiles .phenix schema files into generated Go source.
// See cmd/phenix/root.go for the subcommand tree.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
