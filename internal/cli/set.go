package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	Raw bool
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a value at a dotted path",
		Long: `Write a value at a dotted path.

The value is parsed as JSON when possible, so numbers, booleans, arrays
and objects keep their types; anything that fails to parse is stored as
a plain string. Use --raw to skip JSON parsing entirely.

Example:
  shellstore set cart.items '["socks","mug"]' -c shellstore.yml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts.RootOptions)
			if err != nil {
				return err
			}
			defer store.Close()

			store.Set(args[0], parseValue(args[1], opts.Raw), nil)
			out := NewOutputFormatter(opts.Format, cmd.OutOrStdout())
			return out.Value(args[0], store.Get(args[0]))
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "store the value as a plain string, no JSON parsing")

	return cmd
}

// parseValue interprets a CLI argument as JSON, falling back to a string.
func parseValue(arg string, raw bool) any {
	if raw {
		return arg
	}
	var value any
	if err := json.Unmarshal([]byte(arg), &value); err != nil {
		return arg
	}
	return value
}
