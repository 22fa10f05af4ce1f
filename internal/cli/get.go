package cli

import (
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Read the value at a dotted path",
		Long: `Read the value at a dotted path.

A key absent from the tree falls back to per-key persistence, so values
written by earlier invocations are visible when their prefix has a
local or session strategy in the manifest.

Example:
  shellstore get user.profile.name -c shellstore.yml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())
			return out.Value(args[0], store.Get(args[0]))
		},
	}
}
