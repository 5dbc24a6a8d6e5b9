package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration. Unknown log drivers are not
// an error: the dispatcher falls back to the file sink for them.
func (v *Validator) Validate(cfg *Config) error {
	v.validateSinks(cfg)
	v.validateReporting(cfg.ErrorReporting)
	v.validateBenchmark(&cfg.Benchmark)
	v.validateCrashDump(&cfg.CrashDump)
	v.validateLog(&cfg.Log)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

// Errors returns the collected validation errors.
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

func (v *Validator) addError(field string, value interface{}, msg string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: msg,
	})
}

func (v *Validator) validateSinks(cfg *Config) {
	if cfg.LogPath == "" {
		v.addError(KeyLogPath, cfg.LogPath, "path required")
	} else if !isValidPath(cfg.LogPath) {
		v.addError(KeyLogPath, cfg.LogPath, "invalid file path")
	}
	if cfg.LogDriver == DriverSQLite && cfg.LogSQLitePath == "" {
		v.addError(KeyLogSQLitePath, cfg.LogSQLitePath, "path required for sqlite driver")
	}
}

func (v *Validator) validateReporting(mask int) {
	if mask < 0 || mask > ReportAll {
		v.addError(KeyErrorReporting, mask, fmt.Sprintf("must be between 0 and %d", ReportAll))
	}
}

func (v *Validator) validateBenchmark(cfg *BenchmarkConfig) {
	switch cfg.MemorySource {
	case MemorySourceHeap, MemorySourceRSS:
	default:
		v.addError(KeyBenchmarkMemorySource, cfg.MemorySource, "must be one of: heap, rss")
	}
	if cfg.SampleInterval < 0 {
		v.addError(KeyBenchmarkSampleInterval, cfg.SampleInterval, "must not be negative")
	}
}

func (v *Validator) validateCrashDump(cfg *CrashDumpConfig) {
	if cfg.MaxFiles < 0 {
		v.addError(KeyCrashDumpMaxFiles, cfg.MaxFiles, "must not be negative")
	}
	if cfg.Enabled && cfg.Dir == "" {
		v.addError(KeyCrashDumpDir, cfg.Dir, "directory required when crash dumps are enabled")
	}
}

func (v *Validator) validateLog(cfg *LogConfig) {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "notice", "warn", "warning", "error", "critical", "alert", "emergency":
	default:
		v.addError(KeyLogLevel, cfg.Level, "must be one of: debug, info, notice, warn, error, critical, alert, emergency")
	}

	switch cfg.Format {
	case "auto", "text", "json":
	default:
		v.addError(KeyLogFormat, cfg.Format, "must be one of: auto, text, json")
	}
}

func isValidPath(path string) bool {
	dir := filepath.Dir(path)
	_, err := os.Stat(dir)
	return err == nil || os.IsNotExist(err)
}

// ValidateConfig is a convenience function that creates a validator and validates config.
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	return v.Validate(cfg)
}
