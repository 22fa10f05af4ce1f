// Command shellstore is the operations CLI for the shared state store.
package main

import (
	"fmt"
	"os"

	"github.com/mfshell/shellstore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
