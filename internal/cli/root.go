// Package cli is the operational surface for the on-disk save corpus:
// listing, inspection, verification, repair, transfer, and statistics.
// The gameplay loop embeds the save service directly and does not go
// through here.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // config file path, empty for the default
	SaveDir string // save directory override, empty to use config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the emberkeep CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "emberkeep",
		Short: "Emberkeep save management",
		Long:  "Manage Emberkeep save slots: list, inspect, verify, repair, transfer.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default ~/.emberkeep/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.SaveDir, "save-dir", "", "save directory (overrides config)")

	cmd.AddCommand(NewSlotsCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewRepairCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
