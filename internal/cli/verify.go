package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberkeep/emberkeep/internal/save"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	All  bool
	Deep bool
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify [<slot>]",
		Short: "Verify artifact integrity",
		Long: `Open every generation of a slot (or of every slot with --all) and
report the ones that fail. Exit code 1 means corruption was found; the
artifacts themselves are never modified.

With --deep, each decoded snapshot is also validated against the
document schema, which catches values the codec tolerates but the game
cannot use.

Example:
  emberkeep verify quick
  emberkeep verify --all --deep`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slot := ""
			if len(args) == 1 {
				slot = args[0]
			}
			return runVerify(opts, slot, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "verify every slot")
	cmd.Flags().BoolVar(&opts.Deep, "deep", false, "also validate decoded snapshots against the schema")

	return cmd
}

func runVerify(opts *VerifyOptions, slot string, cmd *cobra.Command) error {
	if (slot == "") == (!opts.All) {
		return NewExitError(ExitCommandError, "verify requires a slot name or --all (but not both)")
	}

	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rt, err := openRuntime(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	var report *save.VerifyReport
	if opts.All {
		formatter.VerboseLog("Verifying every slot (deep=%v)", opts.Deep)
		report, err = rt.svc.VerifyAll(cmd.Context(), opts.Deep)
	} else {
		formatter.VerboseLog("Verifying slot %q (deep=%v)", slot, opts.Deep)
		report, err = rt.svc.VerifySlot(cmd.Context(), slot, opts.Deep)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "verification did not complete", err)
	}

	if report.Healthy() {
		return outputVerifySuccess(formatter, report)
	}
	return outputVerifyFailure(formatter, report)
}

func outputVerifySuccess(formatter *OutputFormatter, report *save.VerifyReport) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d generation(s) across %d slot(s) verified\n",
		report.Generations, report.Slots)
	return nil
}

func outputVerifyFailure(formatter *OutputFormatter, report *save.VerifyReport) error {
	message := fmt.Sprintf("%d of %d generation(s) failed verification",
		len(report.Issues), report.Generations)

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   report,
			Error: &CLIError{
				Code:    ErrCodeCorruption,
				Message: message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, message)
	}

	fmt.Fprintln(formatter.Writer, "✗ Verification failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range report.Issues {
		fmt.Fprintf(formatter.Writer, "  %s gen %d: %s\n", issue.Slot, issue.Generation, issue.Error)
	}
	fmt.Fprintln(formatter.Writer)

	return NewExitError(ExitFailure, message)
}
