package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDelCommand creates the del command.
func NewDelCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "del <key>",
		Short: "Delete the value at a dotted path",
		Long: `Delete the value at a dotted path.

Deletion writes nil through the store, which removes the tree entry and
the persisted item for the key (no tombstone is left behind).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			store.Set(args[0], nil, nil)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	}
}
