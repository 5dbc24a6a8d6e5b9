package fault

import (
	"strconv"
	"strings"
)

// Severity classifies a fault. Values form a bitmask so a reporting level
// can select any subset.
type Severity int

// Severities, in bit order.
const (
	SeverityError            Severity = 1
	SeverityWarning          Severity = 2
	SeverityParse            Severity = 4
	SeverityNotice           Severity = 8
	SeverityCoreError        Severity = 16
	SeverityCoreWarning      Severity = 32
	SeverityCompileError     Severity = 64
	SeverityCompileWarning   Severity = 128
	SeverityUserError        Severity = 256
	SeverityUserWarning      Severity = 512
	SeverityUserNotice       Severity = 1024
	SeverityStrict           Severity = 2048
	SeverityRecoverableError Severity = 4096
	SeverityDeprecated       Severity = 8192
	SeverityUserDeprecated   Severity = 16384

	SeverityAll Severity = 32767
)

var severityNames = map[Severity]string{
	SeverityError:            "ERROR",
	SeverityWarning:          "WARNING",
	SeverityParse:            "PARSE",
	SeverityNotice:           "NOTICE",
	SeverityCoreError:        "CORE_ERROR",
	SeverityCoreWarning:      "CORE_WARNING",
	SeverityCompileError:     "COMPILE_ERROR",
	SeverityCompileWarning:   "COMPILE_WARNING",
	SeverityUserError:        "USER_ERROR",
	SeverityUserWarning:      "USER_WARNING",
	SeverityUserNotice:       "USER_NOTICE",
	SeverityStrict:           "STRICT",
	SeverityRecoverableError: "RECOVERABLE_ERROR",
	SeverityDeprecated:       "DEPRECATED",
	SeverityUserDeprecated:   "USER_DEPRECATED",
	SeverityAll:              "ALL",
}

// Fatal reports whether s terminates the process once logged.
func (s Severity) Fatal() bool {
	switch s {
	case SeverityError, SeverityParse, SeverityCoreError, SeverityCompileError, SeverityUserError:
		return true
	default:
		return false
	}
}

// ReportedBy reports whether s is selected by the reporting mask.
func (s Severity) ReportedBy(mask int) bool {
	return int(s)&mask != 0
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "SEVERITY(" + strconv.Itoa(int(s)) + ")"
}

// ParseSeverity accepts a severity name, with or without an "E_" prefix, or
// its integer value.
func ParseSeverity(s string) (Severity, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return Severity(n), n > 0
	}
	name := strings.TrimPrefix(strings.ToUpper(s), "E_")
	for sev, n := range severityNames {
		if n == name {
			return sev, true
		}
	}
	return 0, false
}
