package cli

import (
	"sort"

	"github.com/spf13/cobra"
)

// NewStrategiesCommand creates the strategies command.
func NewStrategiesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "strategies",
		Short:         "List the configured persistence strategy prefixes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			prefixes := store.Strategies()
			sort.Strings(prefixes)

			out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())
			return out.List("strategies", prefixes)
		},
	}
}
