package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/pagecheck/internal/config"
	"github.com/papapumpkin/pagecheck/internal/ui"
)

var beautifyCmd = &cobra.Command{
	Use:   "beautify [file]",
	Short: "Print the file as the indentation check expects it",
	Long: `Runs the configured beautifier over the file and prints the result to stdout.
With --write the file is rewritten in place instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBeautify,
}

func init() {
	beautifyCmd.Flags().BoolP("write", "w", false, "rewrite the file in place")

	rootCmd.AddCommand(beautifyCmd)
}

func runBeautify(cmd *cobra.Command, args []string) error {
	printer := ui.New(cmd.ErrOrStderr())
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	b, err := buildBeautifier(cfg)
	if err != nil {
		return err
	}

	target := resolveTarget(cfg, args)
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("beautify: %w", err)
	}
	src, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("beautify: %w", err)
	}

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	pretty, err := b.Beautify(ctx, string(src))
	if err != nil {
		return fmt.Errorf("beautify %s: %w", target, err)
	}

	if write, _ := cmd.Flags().GetBool("write"); !write {
		_, err := io.WriteString(cmd.OutOrStdout(), pretty)
		return err
	}
	if pretty == string(src) {
		printer.Info(target + " is already beautified")
		return nil
	}
	if err := os.WriteFile(target, []byte(pretty), info.Mode().Perm()); err != nil {
		return fmt.Errorf("beautify: %w", err)
	}
	printer.Info("wrote " + target)
	return nil
}
