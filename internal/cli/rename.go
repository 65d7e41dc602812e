package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <from> <to>",
		Short: "Rename a slot",
		Long: `Move a slot and all its generations to a new name. The target name
must not already exist.

Example:
  emberkeep rename chapter-1 chapter-1-done`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runRename(opts *RootOptions, from, to string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rt, err := openRuntime(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.svc.Rename(cmd.Context(), from, to); err != nil {
		return WrapExitError(ExitCommandError,
			fmt.Sprintf("failed to rename slot %q to %q", from, to), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"from": from, "to": to})
	}

	fmt.Fprintf(formatter.Writer, "✓ Slot %q renamed to %q\n", from, to)
	return nil
}
