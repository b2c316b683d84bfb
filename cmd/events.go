package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/pagecheck/internal/config"
	"github.com/papapumpkin/pagecheck/internal/telemetry"
	"github.com/papapumpkin/pagecheck/internal/ui"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "View the JSONL telemetry log of past runs",
	Long: `Reads and formats the telemetry file written by check and watch.

Without --file, reads the configured telemetry_path.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().String("file", "", "telemetry file to read (default: telemetry_path)")
	eventsCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = cfg.TelemetryPath
	}
	if path == "" {
		return errors.New("telemetry: no file given; pass --file or set telemetry_path")
	}
	follow, _ := cmd.Flags().GetBool("follow")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	// Print all existing events.
	out := cmd.OutOrStdout()
	tail := &lineTail{r: bufio.NewReader(f)}
	if err := tail.print(out); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	if !follow {
		tail.flush(out)
		return nil
	}

	printer := ui.New(cmd.ErrOrStderr())
	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			if err := tail.print(out); err != nil {
				return fmt.Errorf("telemetry: read %s: %w", path, err)
			}
		}
	}
}

// lineTail reads complete lines from a file that is still being appended
// to, holding back a trailing partial line until its newline arrives.
type lineTail struct {
	r       *bufio.Reader
	partial string
}

func (t *lineTail) print(w io.Writer) error {
	for {
		line, err := t.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				t.partial += line
				return nil
			}
			return err
		}
		line = strings.TrimSpace(t.partial + line)
		t.partial = ""
		if line != "" {
			printEvent(w, line)
		}
	}
}

// flush prints a final line that was never terminated.
func (t *lineTail) flush(w io.Writer) {
	if line := strings.TrimSpace(t.partial); line != "" {
		printEvent(w, line)
	}
	t.partial = ""
}

// printEvent decodes a JSONL line and prints a human-readable representation.
func printEvent(w io.Writer, line string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}

	ts := evt.Timestamp.Local().Format(time.DateTime)
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", ts))
	parts = append(parts, evt.Kind)

	if evt.Suite != "" {
		parts = append(parts, fmt.Sprintf("suite=%s", evt.Suite))
	}
	if evt.Check != "" {
		parts = append(parts, fmt.Sprintf("check=%q", evt.Check))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
