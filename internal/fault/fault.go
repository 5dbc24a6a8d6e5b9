package fault

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Fault is a runtime error raised by the host with a severity and the
// source location that raised it.
type Fault struct {
	Severity Severity
	Message  string
	File     string
	Line     int
}

// New creates a fault located at the caller.
func New(sev Severity, message string) *Fault {
	return NewAt(1, sev, message)
}

// NewAt creates a fault located skip frames above its caller.
func NewAt(skip int, sev Severity, message string) *Fault {
	file, line := Caller(skip + 1)
	return &Fault{Severity: sev, Message: message, File: file, Line: line}
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s in %s on line %d", f.Severity, f.Message, f.File, f.Line)
}

// Fatal reports whether the fault's severity is fatal.
func (f *Fault) Fatal() bool {
	return f.Severity.Fatal()
}

// Location returns where the fault was raised.
func (f *Fault) Location() (string, int) {
	return f.File, f.Line
}

// Panic is a recovered panic value together with the frame that panicked.
type Panic struct {
	Value any
	File  string
	Line  int
	Stack string
}

func (p *Panic) Error() string {
	return fmt.Sprint(p.Value)
}

// Unwrap returns the panic value when it is an error.
func (p *Panic) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}

// Location returns the panicking frame.
func (p *Panic) Location() (string, int) {
	return p.File, p.Line
}

// Located is implemented by errors that know where they were raised.
type Located interface {
	Location() (file string, line int)
}

// Caller returns the file and line skip frames above its caller.
func Caller(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown", 0
	}
	return file, line
}

// panicSite finds the frame that called panic, or faulted at runtime, from
// inside a deferred recover.
func panicSite() (string, int) {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	inPanic := false
	for {
		fr, more := frames.Next()
		switch {
		case fr.Function == "runtime.gopanic":
			inPanic = true
		case inPanic && !strings.HasPrefix(fr.Function, "runtime."):
			return fr.File, fr.Line
		}
		if !more {
			break
		}
	}
	return "unknown", 0
}

// typeName returns the dynamic type of err without the pointer marker. For
// panics it names the type of the panic value.
func typeName(err error) string {
	var p *Panic
	if errors.As(err, &p) {
		return strings.TrimPrefix(fmt.Sprintf("%T", p.Value), "*")
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}
