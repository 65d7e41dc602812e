package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSlotsCommand creates the slots command.
func NewSlotsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List save slots",
		Long: `List every save slot with its newest generation, timestamp, and size.

Only envelope headers are read; artifacts are not decrypted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlots(rootOpts, cmd)
		},
	}

	return cmd
}

func runSlots(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rt, err := openRuntime(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	infos, err := rt.svc.List(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list slots", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(formatter.Writer, "No slots found")
		return nil
	}

	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%-24s gen %-4d (%d on disk)  %10s  %s\n",
			info.Slot,
			info.Generation,
			info.Generations,
			humanSize(info.SizeBytes),
			info.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return nil
}
