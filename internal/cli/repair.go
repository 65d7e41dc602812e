package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRepairCommand creates the repair command.
func NewRepairCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair <slot>",
		Short: "Promote the newest loadable generation",
		Long: `Walk a slot's generations newest first, find the first one that
still loads, and republish it as the current generation. Corrupt
artifacts are left on disk for inspection.

Example:
  emberkeep repair quick`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runRepair(opts *RootOptions, slot string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rt, err := openRuntime(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	outcome, err := rt.svc.Repair(cmd.Context(), slot)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("failed to repair slot %q", slot), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(outcome)
	}

	if outcome.Promoted == 0 {
		fmt.Fprintf(formatter.Writer, "✓ Slot %q is healthy, nothing to repair\n", slot)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✓ Recovered generation %d, republished as generation %d\n",
		outcome.Recovered, outcome.Promoted)
	return nil
}
