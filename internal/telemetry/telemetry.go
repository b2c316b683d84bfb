// Package telemetry appends a JSONL record of every suite run: when it
// started, how each check ended, and the overall verdict. The file is an
// audit trail that survives across runs, so watch sessions can be replayed.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/papapumpkin/pagecheck/internal/report"
	"github.com/papapumpkin/pagecheck/internal/suite"
)

// Event kinds identify the type of telemetry event.
const (
	KindSuiteStart = "suite_start"
	KindCheckDone  = "check_done"
	KindSuiteDone  = "suite_done"
)

// Event represents a single telemetry record.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Suite     string    `json:"suite,omitempty"`
	Check     string    `json:"check,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// CheckData is the payload of a check_done event.
type CheckData struct {
	Passed    bool     `json:"passed"`
	ElapsedMS int64    `json:"elapsed_ms"`
	Title     string   `json:"title,omitempty"`
	Details   []string `json:"details,omitempty"`
}

// SuiteData is the payload of suite_start and suite_done events.
type SuiteData struct {
	Target string `json:"target"`
	Passed *bool  `json:"passed,omitempty"`
	Failed int    `json:"failed,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
	now  func() time.Time
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
		now:  time.Now,
	}, nil
}

// Emit writes a single event, stamping it with the current time when
// Timestamp is zero. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now().UTC()
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// SuiteStart records that a suite began running against target.
func (e *Emitter) SuiteStart(name, target string) error {
	return e.Emit(Event{Kind: KindSuiteStart, Suite: name, Data: SuiteData{Target: target}})
}

// CheckDone records the outcome of one check.
func (e *Emitter) CheckDone(name string, cr suite.CheckResult) error {
	title, details := report.Describe(cr.Err)
	return e.Emit(Event{
		Kind:  KindCheckDone,
		Suite: name,
		Check: cr.Name,
		Data: CheckData{
			Passed:    cr.Passed,
			ElapsedMS: cr.Elapsed.Milliseconds(),
			Title:     title,
			Details:   details,
		},
	})
}

// SuiteDone records the verdict of a finished suite.
func (e *Emitter) SuiteDone(r *suite.Result) error {
	passed := r.Passed
	return e.Emit(Event{
		Kind:  KindSuiteDone,
		Suite: r.Suite,
		Data:  SuiteData{Target: r.Target, Passed: &passed, Failed: len(r.Failures())},
	})
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
