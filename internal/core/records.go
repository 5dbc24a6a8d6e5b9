package core

import "time"

// ErrorRecord describes a runtime error observed by the fault interceptor.
type ErrorRecord struct {
	Time     time.Time `json:"timestamp"`
	Severity int       `json:"severity"`
	Message  string    `json:"message"`
	File     string    `json:"file"`
	Line     int       `json:"line"`
}

// ExceptionRecord describes a handled panic or an escalated fatal error.
type ExceptionRecord struct {
	Time    time.Time `json:"timestamp"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
	File    string    `json:"file"`
	Line    int       `json:"line"`
	Stack   string    `json:"stack,omitempty"`
}
