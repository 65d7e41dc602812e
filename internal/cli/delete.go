package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Yes bool
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <slot>",
		Short: "Delete a slot and all its generations",
		Long: `Remove a slot directory, including every backup generation in it.
The deletion is unconditional and cannot be undone, so it requires --yes.

Example:
  emberkeep delete old-run --yes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm the deletion")

	return cmd
}

func runDelete(opts *DeleteOptions, slot string, cmd *cobra.Command) error {
	if !opts.Yes {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("refusing to delete slot %q without --yes", slot))
	}

	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rt, err := openRuntime(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.svc.Delete(cmd.Context(), slot); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to delete slot %q", slot), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"slot": slot, "message": "deleted"})
	}

	fmt.Fprintf(formatter.Writer, "✓ Slot %q deleted\n", slot)
	return nil
}
