package fault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/hugo-lorenzo-mato/debugkit/internal/collector"
	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
)

// recentLogs is how many trailing log entries a dump carries.
const recentLogs = 20

// HostSnapshot is a best-effort view of the machine at crash time.
type HostSnapshot struct {
	Goroutines int     `json:"goroutines"`
	HeapAlloc  uint64  `json:"heap_alloc"`
	CPUThreads int     `json:"cpu_threads,omitempty"`
	MemTotal   uint64  `json:"mem_total,omitempty"`
	MemUsed    uint64  `json:"mem_used,omitempty"`
	MemPercent float64 `json:"mem_percent,omitempty"`
	LoadAvg1   float64 `json:"load_avg_1,omitempty"`
	LoadAvg5   float64 `json:"load_avg_5,omitempty"`
	LoadAvg15  float64 `json:"load_avg_15,omitempty"`
	OpenFDs    int     `json:"open_fds,omitempty"`
	MaxFDs     int     `json:"max_fds,omitempty"`
	DiskFree   uint64  `json:"disk_free,omitempty"`
}

// CrashDump is everything captured when a fatal fault terminates the process.
type CrashDump struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ProcessID int       `json:"process_id"`
	GoVersion string    `json:"go_version"`
	GOOS      string    `json:"goos"`
	GOARCH    string    `json:"goarch"`

	Exception  core.ExceptionRecord `json:"exception"`
	StackTrace string               `json:"stack_trace,omitempty"`

	Host       HostSnapshot       `json:"host"`
	RecentLogs []core.LogEntry    `json:"recent_logs,omitempty"`
	Errors     []core.ErrorRecord `json:"errors,omitempty"`

	CommandArgs []string `json:"command_args,omitempty"`
	WorkDir     string   `json:"work_dir,omitempty"`
}

// CrashDumpWriter persists crash dumps to the configured directory and keeps
// at most crash_dump.max_files of them.
type CrashDumpWriter struct {
	settings  *config.Settings
	collector *collector.Collector
	logger    *logging.Logger

	mu sync.Mutex
}

// NewCrashDumpWriter creates a writer. collector may be nil.
func NewCrashDumpWriter(settings *config.Settings, coll *collector.Collector, logger *logging.Logger) *CrashDumpWriter {
	return &CrashDumpWriter{
		settings:  settings,
		collector: coll,
		logger:    logging.OrNop(logger).WithComponent("crashdump"),
	}
}

// Enabled reports whether dumps should be written.
func (w *CrashDumpWriter) Enabled() bool {
	return w.settings.Bool(config.KeyCrashDumpEnabled)
}

func (w *CrashDumpWriter) dir() string {
	return w.settings.CrashDumpDir()
}

func (w *CrashDumpWriter) maxFiles() int {
	if n := w.settings.Int(config.KeyCrashDumpMaxFiles); n > 0 {
		return n
	}
	return config.Default().CrashDump.MaxFiles
}

// Write builds a dump for rec and writes it, returning the file path.
func (w *CrashDumpWriter) Write(rec core.ExceptionRecord) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	dump := CrashDump{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ProcessID:   os.Getpid(),
		GoVersion:   runtime.Version(),
		GOOS:        runtime.GOOS,
		GOARCH:      runtime.GOARCH,
		Exception:   rec,
		Host:        TakeHostSnapshot(),
		CommandArgs: w.logger.Sanitizer().SanitizeArgs(os.Args),
	}
	if w.settings.Bool(config.KeyCrashDumpIncludeStack) {
		dump.StackTrace = rec.Stack
		if dump.StackTrace == "" {
			dump.StackTrace = string(debug.Stack())
		}
	}
	if wd, err := os.Getwd(); err == nil {
		dump.WorkDir = wd
	}
	if w.collector != nil {
		dump.RecentLogs = w.collector.Tail(recentLogs)
		dump.Errors = w.collector.Errors()
	}

	dir := w.dir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating crash dump dir: %w", err)
	}
	if usage, err := disk.Usage(dir); err == nil {
		dump.Host.DiskFree = usage.Free
	}

	filename := fmt.Sprintf("crash-%s-%s.json",
		dump.Timestamp.Format("2006-01-02T15-04-05"), dump.ID[:8])
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling crash dump: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing crash dump: %w", err)
	}

	_ = w.cleanupOldDumps(dir)
	return path, nil
}

// cleanupOldDumps removes the oldest dumps beyond max_files.
func (w *CrashDumpWriter) cleanupOldDumps(dir string) error {
	dumps, err := listDumps(dir)
	if err != nil {
		return err
	}
	for len(dumps) > w.maxFiles() {
		path := filepath.Join(dir, dumps[0].Name())
		if err := os.Remove(path); err != nil {
			w.logger.Warn("failed to remove old crash dump", "path", path, "error", err)
		}
		dumps = dumps[1:]
	}
	return nil
}

// listDumps returns crash dump entries, oldest first.
func listDumps(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dumps []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), ".json") {
			dumps = append(dumps, e)
		}
	}
	sort.Slice(dumps, func(i, j int) bool {
		infoI, errI := dumps[i].Info()
		infoJ, errJ := dumps[j].Info()
		if errI != nil || errJ != nil || infoI.ModTime().Equal(infoJ.ModTime()) {
			return dumps[i].Name() < dumps[j].Name()
		}
		return infoI.ModTime().Before(infoJ.ModTime())
	})
	return dumps, nil
}

// LoadLatestCrashDump loads the most recent crash dump from dir.
func LoadLatestCrashDump(dir string) (*CrashDump, error) {
	dumps, err := listDumps(dir)
	if err != nil {
		return nil, fmt.Errorf("reading crash dump dir: %w", err)
	}
	if len(dumps) == 0 {
		return nil, core.ErrNotFound("crash dump", dir)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("opening crash dump dir: %w", err)
	}
	defer func() { _ = root.Close() }()

	data, err := root.ReadFile(dumps[len(dumps)-1].Name())
	if err != nil {
		return nil, fmt.Errorf("reading crash dump: %w", err)
	}
	var dump CrashDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("parsing crash dump: %w", err)
	}
	return &dump, nil
}

// TakeHostSnapshot gathers runtime and host metrics. Host metrics that
// cannot be read on this platform are left zero.
func TakeHostSnapshot() HostSnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	snap := HostSnapshot{
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
	}
	snap.OpenFDs, snap.MaxFDs = countFDs()
	if n, err := cpu.Counts(true); err == nil {
		snap.CPUThreads = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemTotal = vm.Total
		snap.MemUsed = vm.Used
		snap.MemPercent = vm.UsedPercent
	}
	if avg, err := load.Avg(); err == nil {
		snap.LoadAvg1 = avg.Load1
		snap.LoadAvg5 = avg.Load5
		snap.LoadAvg15 = avg.Load15
	}
	return snap
}
