package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
	"github.com/hugo-lorenzo-mato/debugkit/internal/fsutil"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
	"github.com/hugo-lorenzo-mato/debugkit/internal/sink"
)

var (
	logsPath     string
	logsDriver   string
	logsLevel    string
	logsMinLevel string
	logsTail     int
	logsJSON     bool
	logsFollow   bool
)

var (
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	ctxStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#06b6d4"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	severeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Read or follow captured log entries",
	Long: `Read the entries written by the file or sqlite sink.

The sink and its path default to the configured log_driver, log_path and
log_sqlite_path. Drivers that keep nothing on disk read the file sink.`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsPath, "path", "", "log file or database (default from config)")
	logsCmd.Flags().StringVar(&logsDriver, "driver", "", "sink to read: file or sqlite (default from config)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "only show entries at this level ("+levelNames()+")")
	logsCmd.Flags().StringVar(&logsMinLevel, "min-level", "", "only show entries at or above this level")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 0, "show only the last N entries (0 shows all)")
	logsCmd.Flags().BoolVar(&logsJSON, "json", false, "print entries as JSON lines")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "keep printing entries appended to the log file")

	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	filter, err := newLevelFilter(logsLevel, logsMinLevel)
	if err != nil {
		return err
	}
	logger := newLogger().WithComponent("logs")
	out := &entryPrinter{w: cmd.OutOrStdout(), json: logsJSON, color: !noColor}

	driver := logsDriver
	if driver == "" {
		driver = settings.LogDriver()
	}

	if driver == config.DriverSQLite {
		if logsFollow {
			return core.ErrValidation("UNSUPPORTED_FOLLOW", "--follow only works with the file sink")
		}
		path := logsPath
		if path == "" {
			path = settings.SQLitePath()
		}
		return printSQLite(contextOf(cmd), path, filter, logsTail, out, logger)
	}

	path := logsPath
	if path == "" {
		path = settings.LogPath()
	}
	offset, err := printFile(path, filter, logsTail, out, logger, logsFollow)
	if err != nil || !logsFollow {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
	defer stop()
	t := &tailer{path: path, offset: offset, filter: filter, print: out.print, logger: logger}
	return t.follow(ctx)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printSQLite(ctx context.Context, path string, filter levelFilter, tail int, out *entryPrinter, logger *logging.Logger) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return core.ErrNotFound("log database", path)
		}
		return err
	}
	db := sink.NewSQLiteSink(func() string { return path }, logger)
	defer db.Close()

	limit := tail
	if filter.active() {
		// The tail applies after filtering.
		limit = 0
	}
	entries, err := db.Entries(ctx, limit)
	if err != nil {
		return err
	}
	return printEntries(lastN(filter.apply(entries), tail), out)
}

// printFile prints the current content of the log file and returns the
// offset following mode continues from.
func printFile(path string, filter levelFilter, tail int, out *entryPrinter, logger *logging.Logger, follow bool) (int64, error) {
	data, offset, err := fsutil.ReadFromOffset(path, 0)
	if err != nil {
		if os.IsNotExist(err) {
			if follow {
				return 0, nil
			}
			return 0, core.ErrNotFound("log file", path)
		}
		return 0, fmt.Errorf("reading log file: %w", err)
	}
	entries, rest := parseLines(data, logger)
	offset -= int64(len(rest))
	return offset, printEntries(lastN(filter.apply(entries), tail), out)
}

func printEntries(entries []core.LogEntry, out *entryPrinter) error {
	for _, e := range entries {
		if err := out.print(e); err != nil {
			return err
		}
	}
	return nil
}

func lastN(entries []core.LogEntry, n int) []core.LogEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

// parseLines decodes complete JSON lines and returns the trailing partial
// line, if any, unparsed.
func parseLines(data []byte, logger *logging.Logger) ([]core.LogEntry, []byte) {
	var entries []core.LogEntry
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return entries, data
		}
		line := bytes.TrimSpace(data[:i])
		data = data[i+1:]
		if len(line) == 0 {
			continue
		}
		var e core.LogEntry
		if err := json.Unmarshal(line, &e); err != nil {
			logging.OrNop(logger).Warn("skipping malformed log line", "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type levelFilter struct {
	exact core.Level
	min   int
}

func newLevelFilter(exact, minLevel string) (levelFilter, error) {
	f := levelFilter{min: -1}
	if exact != "" {
		l, err := core.ParseLevel(exact)
		if err != nil {
			return f, err
		}
		f.exact = l
	}
	if minLevel != "" {
		l, err := core.ParseLevel(minLevel)
		if err != nil {
			return f, err
		}
		f.min = l.Rank()
	}
	return f, nil
}

func (f levelFilter) active() bool {
	return f.exact != "" || f.min >= 0
}

func (f levelFilter) match(e core.LogEntry) bool {
	if f.exact != "" && e.Level != f.exact {
		return false
	}
	return f.min < 0 || e.Level.Rank() >= f.min
}

func (f levelFilter) apply(entries []core.LogEntry) []core.LogEntry {
	if !f.active() {
		return entries
	}
	out := entries[:0:0]
	for _, e := range entries {
		if f.match(e) {
			out = append(out, e)
		}
	}
	return out
}

type entryPrinter struct {
	w     io.Writer
	json  bool
	color bool
}

func (p *entryPrinter) print(e core.LogEntry) error {
	if p.json {
		line, err := core.Marshal(e)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(p.w, "%s\n", line)
		return err
	}

	ts := e.Time.Format(core.TimestampLayout)
	level := fmt.Sprintf("%-9s", e.Level)
	var ctx string
	if len(e.Context) > 0 {
		raw, err := core.Marshal(e.Context)
		if err != nil {
			return err
		}
		ctx = " " + string(raw)
	}
	if p.color {
		ts = timeStyle.Render(ts)
		level = levelStyle(e.Level).Render(level)
		if ctx != "" {
			ctx = ctxStyle.Render(ctx)
		}
	}
	_, err := fmt.Fprintf(p.w, "%s %s %s%s\n", ts, level, e.Message, ctx)
	return err
}

func levelStyle(l core.Level) lipgloss.Style {
	switch l {
	case core.LevelDebug:
		return debugStyle
	case core.LevelInfo:
		return infoStyle
	case core.LevelNotice:
		return noticeStyle
	case core.LevelWarning:
		return warningStyle
	case core.LevelError:
		return errorStyle
	default:
		return severeStyle
	}
}

// tailer prints entries appended to a log file until its context ends.
type tailer struct {
	path    string
	offset  int64
	pending []byte
	filter  levelFilter
	print   func(core.LogEntry) error
	logger  *logging.Logger
	ready   chan struct{}
}

func (t *tailer) follow(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(t.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if t.ready != nil {
		close(t.ready)
	}
	// Catch writes that landed between the first read and the watch.
	if err := t.drain(); err != nil {
		return err
	}

	target := filepath.Clean(t.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				t.offset = 0
				t.pending = nil
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := t.drain(); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.OrNop(t.logger).Warn("watcher error", "error", err)
		}
	}
}

// drain prints every complete line past the current offset.
func (t *tailer) drain() error {
	prev := t.offset
	data, next, err := fsutil.ReadFromOffset(t.path, t.offset)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading log file: %w", err)
	}
	if next-int64(len(data)) < prev {
		// Truncated; anything buffered belonged to the old file.
		t.pending = nil
	}
	t.offset = next
	if len(data) == 0 {
		return nil
	}
	buf := append(t.pending, data...)
	entries, rest := parseLines(buf, t.logger)
	t.pending = append([]byte(nil), rest...)
	for _, e := range t.filter.apply(entries) {
		if err := t.print(e); err != nil {
			return err
		}
	}
	return nil
}

func levelNames() string {
	names := make([]string, len(core.Levels))
	for i, l := range core.Levels {
		names[i] = l.Lower()
	}
	return strings.Join(names, ", ")
}
