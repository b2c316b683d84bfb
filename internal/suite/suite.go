// Package suite runs a named set of checks against a target file. A gate
// check runs first; when it fails nothing else runs. The remaining checks
// are independent: a failure is recorded for that check only and its
// siblings still run.
package suite

import (
	"context"
	"fmt"
	"time"
)

// Check is a single named check. Fn returns nil on pass and an error,
// usually a *MultiLineError, on failure.
type Check struct {
	Name string
	Fn   func(ctx context.Context, target string) error
}

// Suite groups checks under a name, normally the target's file name.
type Suite struct {
	Name   string
	Gate   *Check // optional; short-circuits the suite when it fails
	Checks []Check

	// OnCheck, when set, is called after each check completes.
	OnCheck func(CheckResult)
}

// Result contains the outcome of a suite run. Checks that were skipped
// because the gate failed do not appear.
type Result struct {
	Suite  string
	Target string
	Passed bool
	Checks []CheckResult
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name    string
	Passed  bool
	Err     error
	Elapsed time.Duration
}

// Run executes the gate and then every check in registration order.
// A non-nil error is only returned when ctx is cancelled; check failures
// are captured in the Result.
func (s *Suite) Run(ctx context.Context, target string) (*Result, error) {
	result := &Result{Suite: s.Name, Target: target, Passed: true}

	if s.Gate != nil {
		cr, err := runCheck(ctx, *s.Gate, target)
		if err != nil {
			return nil, err
		}
		s.record(result, cr)
		if !cr.Passed {
			return result, nil
		}
	}

	for _, check := range s.Checks {
		cr, err := runCheck(ctx, check, target)
		if err != nil {
			return nil, err
		}
		s.record(result, cr)
	}
	return result, nil
}

func runCheck(ctx context.Context, check Check, target string) (CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return CheckResult{}, fmt.Errorf("suite cancelled: %w", err)
	}

	start := time.Now()
	err := check.Fn(ctx, target)
	elapsed := time.Since(start)

	if err != nil && ctx.Err() != nil {
		return CheckResult{}, fmt.Errorf("suite cancelled during %q: %w", check.Name, ctx.Err())
	}
	return CheckResult{
		Name:    check.Name,
		Passed:  err == nil,
		Err:     err,
		Elapsed: elapsed,
	}, nil
}

func (s *Suite) record(r *Result, cr CheckResult) {
	r.add(cr)
	if s.OnCheck != nil {
		s.OnCheck(cr)
	}
}

func (r *Result) add(cr CheckResult) {
	r.Checks = append(r.Checks, cr)
	if !cr.Passed {
		r.Passed = false
	}
}

// FirstFailure returns the first failing check, or nil if all passed.
func (r *Result) FirstFailure() *CheckResult {
	for i := range r.Checks {
		if !r.Checks[i].Passed {
			return &r.Checks[i]
		}
	}
	return nil
}

// Failures returns every failing check in run order.
func (r *Result) Failures() []CheckResult {
	var out []CheckResult
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}
