package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <slot> <file>",
		Short: "Export a slot's current generation to a file",
		Long: `Write the newest generation of a slot to a standalone file. The
artifact is verified before export; a slot whose current generation no
longer loads is refused, so what leaves the store is always importable.

Example:
  emberkeep export chapter-3 chapter-3.sav`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runExport(opts *RootOptions, slot, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rt, err := openRuntime(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	data, generation, err := rt.svc.Export(cmd.Context(), slot)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to export slot %q", slot), err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to write %q", path), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"slot":       slot,
			"generation": generation,
			"file":       path,
			"size_bytes": len(data),
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Exported generation %d of %q to %s (%s)\n",
		generation, slot, path, humanSize(int64(len(data))))
	return nil
}
