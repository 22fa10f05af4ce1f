package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	App string
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove an application's stored data",
		Long: `Remove an application's stored data: its aggregate blob and every
persisted item namespaced under its storage key, from both the durable
and the session medium. Defaults to this store's own storage key; use
--app to scrub another application's footprint.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts.RootOptions)
			if err != nil {
				return err
			}
			defer store.Close()

			app := opts.App
			if app == "" {
				app = store.Options().StorageKey
			}
			store.ClearAppData(app)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", app)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.App, "app", "", "storage key to clear (default: this store's own)")

	return cmd
}
