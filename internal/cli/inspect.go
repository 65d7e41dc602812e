package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <slot>",
		Short: "Show per-generation artifact metadata",
		Long: `Show envelope metadata for every generation of a slot, newest first:
schema version, creation time, plaintext size, and checksum. Artifacts
are not decrypted, so this works even when the secret is wrong or the
payload is damaged.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, slot string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rt, err := openRuntime(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	infos, err := rt.svc.Inspect(cmd.Context(), slot)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to inspect slot %q", slot), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintf(formatter.Writer, "Slot %q has no generations\n", slot)
		return nil
	}

	for _, info := range infos {
		if info.ParseError != "" {
			fmt.Fprintf(formatter.Writer, "gen %-4d %10s  UNREADABLE: %s\n",
				info.Generation, humanSize(info.SizeBytes), info.ParseError)
			continue
		}
		fmt.Fprintf(formatter.Writer, "gen %-4d %10s  schema v%d  %s  plain %s  sha256 %s\n",
			info.Generation,
			humanSize(info.SizeBytes),
			info.SchemaVersion,
			info.CreatedAt.Format("2006-01-02 15:04:05"),
			humanSize(int64(info.PlainSize)),
			info.Checksum[:12],
		)
	}
	return nil
}
