package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <key> [key...]",
		Short: "Print changes to keys until interrupted",
		Long: `Print changes to keys until interrupted.

Changes made by other processes arrive through the shared durable
medium, so watching requires aggregate persistence (--persist or
enable_persistence in the manifest). Foreign updates are adopted
wholesale from the aggregate blob; their old values print as <nil>.

Example:
  shellstore watch user cart.items --persist`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			out := NewOutputFormatter(rootOpts.Format, cmd.OutOrStdout())
			for _, key := range args {
				store.Subscribe(key, func(key string, newValue, oldValue any) {
					out.Change(key, newValue, oldValue)
				})
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	}
}
