package config

import (
	"os"
	"path/filepath"
	"time"
)

// Recognized option keys. Nested sections use dotted keys.
const (
	KeyDebugMode               = "debug_mode"
	KeyLogDriver               = "log_driver"
	KeyLogPath                 = "log_path"
	KeyLogSQLitePath           = "log_sqlite_path"
	KeyCLIOutput               = "cli_output"
	KeyErrorCapture            = "error_capture"
	KeyExceptionCapture        = "exception_capture"
	KeyErrorReporting          = "error_reporting"
	KeyBenchmarking            = "benchmarking"
	KeyBenchmarkMemorySource   = "benchmark.memory_source"
	KeyBenchmarkSampleInterval = "benchmark.sample_interval"
	KeyCrashDumpEnabled        = "crash_dump.enabled"
	KeyCrashDumpDir            = "crash_dump.dir"
	KeyCrashDumpMaxFiles       = "crash_dump.max_files"
	KeyCrashDumpIncludeStack   = "crash_dump.include_stack"
	KeyLogLevel                = "log.level"
	KeyLogFormat               = "log.format"
)

// Log drivers understood by the sink registry.
const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverLog    = "log"
	DriverSQLite = "sqlite"
)

// Memory sources for benchmark snapshots.
const (
	MemorySourceHeap = "heap"
	MemorySourceRSS  = "rss"
)

// ReportAll enables every fault severity.
const ReportAll = 32767

// Config holds all debugkit configuration.
type Config struct {
	DebugMode        bool            `mapstructure:"debug_mode" yaml:"debug_mode"`
	LogDriver        string          `mapstructure:"log_driver" yaml:"log_driver"`
	LogPath          string          `mapstructure:"log_path" yaml:"log_path"`
	LogSQLitePath    string          `mapstructure:"log_sqlite_path" yaml:"log_sqlite_path"`
	CLIOutput        bool            `mapstructure:"cli_output" yaml:"cli_output"`
	ErrorCapture     bool            `mapstructure:"error_capture" yaml:"error_capture"`
	ExceptionCapture bool            `mapstructure:"exception_capture" yaml:"exception_capture"`
	ErrorReporting   int             `mapstructure:"error_reporting" yaml:"error_reporting"`
	Benchmarking     bool            `mapstructure:"benchmarking" yaml:"benchmarking"`
	Benchmark        BenchmarkConfig `mapstructure:"benchmark" yaml:"benchmark"`
	CrashDump        CrashDumpConfig `mapstructure:"crash_dump" yaml:"crash_dump"`
	Log              LogConfig       `mapstructure:"log" yaml:"log"`
}

// BenchmarkConfig configures the benchmark engine.
type BenchmarkConfig struct {
	MemorySource   string        `mapstructure:"memory_source" yaml:"memory_source"`
	SampleInterval time.Duration `mapstructure:"sample_interval" yaml:"sample_interval"`
}

// CrashDumpConfig configures crash dumps written on fatal faults.
type CrashDumpConfig struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir          string `mapstructure:"dir" yaml:"dir"`
	MaxFiles     int    `mapstructure:"max_files" yaml:"max_files"`
	IncludeStack bool   `mapstructure:"include_stack" yaml:"include_stack"`
}

// LogConfig configures debugkit's own logger, not the captured entries.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		DebugMode:        true,
		LogDriver:        DriverFile,
		LogPath:          filepath.Join(os.TempDir(), "debug.log"),
		LogSQLitePath:    filepath.Join(os.TempDir(), "debug.sqlite"),
		CLIOutput:        true,
		ErrorCapture:     true,
		ExceptionCapture: true,
		ErrorReporting:   ReportAll,
		Benchmarking:     true,
		Benchmark: BenchmarkConfig{
			MemorySource: MemorySourceHeap,
		},
		CrashDump: CrashDumpConfig{
			Dir:          ".debugkit/crashdumps",
			MaxFiles:     10,
			IncludeStack: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Values flattens the configuration into dotted option keys.
func (c *Config) Values() map[string]interface{} {
	return map[string]interface{}{
		KeyDebugMode:               c.DebugMode,
		KeyLogDriver:               c.LogDriver,
		KeyLogPath:                 c.LogPath,
		KeyLogSQLitePath:           c.LogSQLitePath,
		KeyCLIOutput:               c.CLIOutput,
		KeyErrorCapture:            c.ErrorCapture,
		KeyExceptionCapture:        c.ExceptionCapture,
		KeyErrorReporting:          c.ErrorReporting,
		KeyBenchmarking:            c.Benchmarking,
		KeyBenchmarkMemorySource:   c.Benchmark.MemorySource,
		KeyBenchmarkSampleInterval: c.Benchmark.SampleInterval,
		KeyCrashDumpEnabled:        c.CrashDump.Enabled,
		KeyCrashDumpDir:            c.CrashDump.Dir,
		KeyCrashDumpMaxFiles:       c.CrashDump.MaxFiles,
		KeyCrashDumpIncludeStack:   c.CrashDump.IncludeStack,
		KeyLogLevel:                c.Log.Level,
		KeyLogFormat:               c.Log.Format,
	}
}

// Settings returns a runtime settings store seeded from c.
func (c *Config) Settings() *Settings {
	return NewSettings(c.Values())
}
