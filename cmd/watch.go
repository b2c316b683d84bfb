package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/pagecheck/internal/config"
	"github.com/papapumpkin/pagecheck/internal/ui"
	"github.com/papapumpkin/pagecheck/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-run the check suite whenever the file changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Bool("diff", false, "print the indentation diff when that check fails")
	watchCmd.Flags().String("telemetry", "", "append JSONL run events to this file")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	printer := ui.New(cmd.ErrOrStderr())
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Format = config.FormatText
	if v, _ := cmd.Flags().GetString("telemetry"); v != "" {
		cfg.TelemetryPath = v
	}

	s, err := newSession(cfg, printer, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer s.Close()
	s.showDiff, _ = cmd.Flags().GetBool("diff")

	target := resolveTarget(cfg, args)
	w, err := watch.NewWatcher(target)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	if _, err := s.run(ctx, target); err != nil {
		return err
	}
	printer.Watching(target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			printer.Changed(target)
			if _, err := s.run(ctx, target); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if change.Kind == watch.ChangeRemoved {
				printer.Info("waiting for " + target + " to reappear")
			}
			printer.Watching(target)
		}
	}
}
