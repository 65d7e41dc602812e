package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberkeep/emberkeep/internal/journal"
	"github.com/emberkeep/emberkeep/internal/save"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Slot  string
	Limit int
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show operation statistics from the journal",
		Long: `Aggregate the operation journal per operation: counts, failures,
bytes written and timing. With --slot, show that slot's recent history
instead.

Example:
  emberkeep stats
  emberkeep stats --slot quick --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Slot, "slot", "", "show recent history for one slot")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of history entries with --slot")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rt, err := openRuntime(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	if opts.Slot != "" {
		return outputHistory(formatter, rt, opts, cmd)
	}

	stats, err := rt.svc.Stats(cmd.Context())
	if errors.Is(err, save.ErrJournalDisabled) {
		return NewExitError(ExitCommandError, "journaling is disabled, no statistics to show")
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read statistics", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(stats)
	}

	if len(stats) == 0 {
		fmt.Fprintln(formatter.Writer, "Journal is empty")
		return nil
	}

	fmt.Fprintf(formatter.Writer, "%-10s %8s %8s %12s %10s  %s\n",
		"OP", "TOTAL", "FAILED", "BYTES", "AVG MS", "LAST AT")
	for _, s := range stats {
		fmt.Fprintf(formatter.Writer, "%-10s %8d %8d %12s %10.1f  %s\n",
			s.Op, s.Total, s.Failed, humanSize(s.Bytes), s.AvgMillis,
			s.LastAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func outputHistory(formatter *OutputFormatter, rt *runtime, opts *StatsOptions, cmd *cobra.Command) error {
	entries, err := rt.svc.History(cmd.Context(), opts.Slot, opts.Limit)
	if errors.Is(err, save.ErrJournalDisabled) {
		return NewExitError(ExitCommandError, "journaling is disabled, no history to show")
	}
	if err != nil {
		return WrapExitError(ExitCommandError,
			fmt.Sprintf("failed to read history for slot %q", opts.Slot), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(formatter.Writer, "No journal entries for slot %q\n", opts.Slot)
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "%s  %-10s %-10s gen %-4d %10s",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Op, e.Status,
			e.Generation, humanSize(e.Bytes))
		if e.Status == journal.StatusError && e.Error != "" {
			fmt.Fprintf(formatter.Writer, "  %s", e.Error)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
