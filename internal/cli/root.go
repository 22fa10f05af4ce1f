// Package cli implements the shellstore command line, a thin operations
// surface over a store instance: inspect keys, write values, watch
// changes from other processes, and clear an application's footprint.
//
// The CLI always runs without the in-process broadcast channel so the
// storage watcher carries cross-process sync - each invocation is its own
// "browsing context" and only the shared durable medium connects them.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	StorageKey string
	Persist    bool
	Encrypt    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the shellstore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shellstore",
		Short: "Shared state store for independently deployed shells",
		Long: `shellstore coordinates a shared key/value state tree across
processes on one machine: dotted-path addressing, per-prefix persistence
strategies, and best-effort synchronization through the shared durable
medium.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a shellstore manifest (YAML)")
	cmd.PersistentFlags().StringVar(&opts.StorageKey, "storage-key", "", "storage key (overrides the manifest)")
	cmd.PersistentFlags().BoolVar(&opts.Persist, "persist", false, "enable aggregate persistence (overrides the manifest)")
	cmd.PersistentFlags().BoolVar(&opts.Encrypt, "encrypt", false, "obfuscate the aggregate blob (overrides the manifest)")

	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewDelCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewStrategiesCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
