package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/papapumpkin/pagecheck/internal/checks"
	"github.com/papapumpkin/pagecheck/internal/command"
	"github.com/papapumpkin/pagecheck/internal/config"
	"github.com/papapumpkin/pagecheck/internal/diagnostic"
	"github.com/papapumpkin/pagecheck/internal/indent"
	"github.com/papapumpkin/pagecheck/internal/lint"
	"github.com/papapumpkin/pagecheck/internal/report"
	"github.com/papapumpkin/pagecheck/internal/suite"
	"github.com/papapumpkin/pagecheck/internal/telemetry"
	"github.com/papapumpkin/pagecheck/internal/ui"
	"github.com/papapumpkin/pagecheck/internal/validator"
)

// session holds everything a suite run needs, built once per command.
type session struct {
	cfg      config.Config
	printer  *ui.Printer
	emitter  *telemetry.Emitter
	deps     checks.Deps
	showDiff bool
	stdout   io.Writer
}

// newSession wires the configured collaborators. The caller must close the
// session.
func newSession(cfg config.Config, printer *ui.Printer, stdout io.Writer) (*session, error) {
	deps, err := buildDeps(cfg)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, printer: printer, deps: deps, stdout: stdout}
	if cfg.TelemetryPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TelemetryPath), 0o755); err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		em, err := telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			return nil, err
		}
		s.emitter = em
	}
	return s, nil
}

func (s *session) Close() error {
	return s.emitter.Close()
}

func (s *session) text() bool {
	return s.cfg.Format == config.FormatText
}

// run executes the suite once and renders its result.
func (s *session) run(ctx context.Context, target string) (*suite.Result, error) {
	st := checks.NewSuite(target, s.deps)
	st.OnCheck = func(cr suite.CheckResult) {
		if s.text() {
			s.printer.Check(cr)
		}
		s.telemetry(s.emitter.CheckDone(st.Name, cr))
	}

	if s.text() {
		s.printer.SuiteStart(st.Name, target)
	}
	s.telemetry(s.emitter.SuiteStart(st.Name, target))

	result, err := st.Run(ctx, target)
	if err != nil {
		return nil, err
	}
	s.telemetry(s.emitter.SuiteDone(result))

	if !s.text() {
		if err := report.Write(s.stdout, report.New(result), s.cfg.Format); err != nil {
			return nil, err
		}
		return result, nil
	}

	s.printer.Summary(result)
	if s.showDiff && indentationFailed(result) {
		s.printDiff(ctx, target)
	}
	return result, nil
}

// telemetry reports a failed write without aborting the run.
func (s *session) telemetry(err error) {
	if err != nil {
		s.printer.Error(err.Error())
	}
}

func (s *session) printDiff(ctx context.Context, target string) {
	chunks, err := checks.Reindent(ctx, s.deps.Beautifier, target)
	if err != nil {
		s.printer.Error(err.Error())
		return
	}
	out, err := indent.UnifiedDiff(filepath.Base(target), chunks, indent.DefaultContext)
	if err != nil {
		s.printer.Error(err.Error())
		return
	}
	if out != "" {
		s.printer.Diff(out)
	}
}

func indentationFailed(r *suite.Result) bool {
	for _, c := range r.Failures() {
		if c.Name == checks.NameIndented {
			return true
		}
	}
	return false
}

// buildDeps constructs the validator, linter and beautifier named by cfg.
func buildDeps(cfg config.Config) (checks.Deps, error) {
	filter, err := diagnostic.NewFilter(cfg.Validator.Ignore)
	if err != nil {
		return checks.Deps{}, fmt.Errorf("validator.ignore: %w", err)
	}

	var linter checks.Linter
	switch cfg.Linter.Engine {
	case config.EngineHTMLHint:
		runner := newRunner(cfg, cfg.Linter.HTMLHintPath)
		if err := runner.Validate(); err != nil {
			return checks.Deps{}, err
		}
		linter = &lint.HTMLHint{Runner: runner}
	default:
		b, err := lint.NewBuiltin(cfg.Linter.Disable)
		if err != nil {
			return checks.Deps{}, fmt.Errorf("linter.disable: %w", err)
		}
		linter = b
	}

	beautifier, err := buildBeautifier(cfg)
	if err != nil {
		return checks.Deps{}, err
	}

	return checks.Deps{
		Validator:  validator.NewNuClient(cfg.Validator.URL, cfg.Validator.Timeout),
		Linter:     linter,
		Beautifier: beautifier,
		Filter:     filter,
	}, nil
}

func buildBeautifier(cfg config.Config) (checks.Beautifier, error) {
	if cfg.Beautifier.Engine == config.EngineJSBeautify {
		runner := newRunner(cfg, cfg.Beautifier.Path)
		if err := runner.Validate(); err != nil {
			return nil, err
		}
		return &indent.ExternalBeautifier{Runner: runner, Opts: cfg.Beautifier.Options}, nil
	}
	r, err := indent.NewReindenter(cfg.Beautifier.Options)
	if err != nil {
		return nil, fmt.Errorf("beautifier: %w", err)
	}
	return r, nil
}

func newRunner(cfg config.Config, path string) *command.Runner {
	return &command.Runner{Path: path, Verbose: cfg.Verbose, Log: os.Stderr}
}

// resolveTarget returns the file named on the command line, or the
// configured default.
func resolveTarget(cfg config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Target
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
