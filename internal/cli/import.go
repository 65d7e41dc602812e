package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Slot string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an exported artifact into a slot",
		Long: `Read an exported artifact, verify it decrypts, decodes and passes
schema validation, then publish it as the slot's next generation. A file
that fails any check is rejected before anything is written.

Example:
  emberkeep import chapter-3.sav --slot chapter-3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Slot, "slot", "", "destination slot (required)")
	_ = cmd.MarkFlagRequired("slot")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read %q", path), err)
	}

	rt, err := openRuntime(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	generation, err := rt.svc.Import(cmd.Context(), opts.Slot, data)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("failed to import %q", path), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"slot":       opts.Slot,
			"generation": generation,
			"file":       path,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Imported %s into %q as generation %d\n",
		path, opts.Slot, generation)
	return nil
}
