package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/pagecheck/internal/config"
	"github.com/papapumpkin/pagecheck/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Run the check suite once",
	Long: `Runs the existence, validity, best-practices and indentation checks against
the file (default: the configured target, index.html). Exits with status 1
when any check fails.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindCheckFlags,
	RunE:    runCheck,
}

func init() {
	checkCmd.Flags().String("format", config.FormatText, "output format: text, json or toml")
	checkCmd.Flags().Bool("diff", false, "print the indentation diff when that check fails")
	checkCmd.Flags().String("telemetry", "", "append JSONL run events to this file")

	rootCmd.AddCommand(checkCmd)
}

// bindCheckFlags lets --format and --telemetry override the config file.
func bindCheckFlags(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlag("format", cmd.Flags().Lookup("format")); err != nil {
		return err
	}
	return viper.BindPFlag("telemetry_path", cmd.Flags().Lookup("telemetry"))
}

func runCheck(cmd *cobra.Command, args []string) error {
	printer := ui.New(cmd.ErrOrStderr())
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	s, err := newSession(cfg, printer, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer s.Close()
	s.showDiff, _ = cmd.Flags().GetBool("diff")

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	result, err := s.run(ctx, resolveTarget(cfg, args))
	if err != nil {
		return err
	}
	if !result.Passed {
		return errChecksFailed
	}
	return nil
}
