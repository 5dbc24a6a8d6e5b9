package logging

import (
	"regexp"
	"strings"
	"sync"
)

// Sanitizer redacts credentials from debugkit's own output: self-log
// records and the command line stored in crash dumps. Captured log entries
// are never rewritten.
type Sanitizer struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	redacted string
}

// secretFlag matches command line flags whose value is a credential.
var secretFlag = regexp.MustCompile(`(?i)^--?[a-z0-9_-]*(password|passwd|secret|token|api[_-]?key)$`)

var defaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|secret|token)["'\s:=]+[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)password["'\s:=]+[^\s"']{8,}`),
	// user:pass@ in DSNs and URLs
	regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://[^/\s:@]+:[^/\s@]+@`),
}

// NewSanitizer creates a sanitizer with the default patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: append([]*regexp.Regexp(nil), defaultPatterns...),
		redacted: "[REDACTED]",
	}
}

// Sanitize redacts every pattern match in input.
func (s *Sanitizer) Sanitize(input string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patterns {
		input = p.ReplaceAllString(input, s.redacted)
	}
	return input
}

// SanitizeArgs returns a redacted copy of a command line. Values of
// credential flags are replaced whether given as "--token=x" or "--token x".
func (s *Sanitizer) SanitizeArgs(args []string) []string {
	out := make([]string, len(args))
	redactNext := false
	for i, arg := range args {
		switch {
		case redactNext:
			out[i] = s.placeholder()
			redactNext = false
		case secretFlag.MatchString(arg):
			out[i] = arg
			redactNext = true
		default:
			if name, _, ok := strings.Cut(arg, "="); ok && secretFlag.MatchString(name) {
				out[i] = name + "=" + s.placeholder()
				continue
			}
			out[i] = s.Sanitize(arg)
		}
	}
	return out
}

// AddPattern adds a custom pattern.
func (s *Sanitizer) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.patterns = append(s.patterns, re)
	s.mu.Unlock()
	return nil
}

// SetRedactedPlaceholder sets the text that replaces redacted content.
func (s *Sanitizer) SetRedactedPlaceholder(placeholder string) {
	s.mu.Lock()
	s.redacted = placeholder
	s.mu.Unlock()
}

func (s *Sanitizer) placeholder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.redacted
}
