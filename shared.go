package debugkit

import (
	"context"
	"sync"

	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
)

var (
	sharedOnce sync.Once
	shared     *Debugger
)

// Shared returns the process-wide Debugger, building it on first use from
// the DEBUGKIT_* environment and an optional .debugkit.yaml. A config file
// that cannot be read leaves the defaults in place.
func Shared() *Debugger {
	sharedOnce.Do(func() {
		settings, err := config.NewLoader().LoadSettings()
		if err != nil {
			logging.New(logging.DefaultConfig()).Warn("loading debugkit config, using defaults", "error", err)
			settings = config.DefaultSettings()
		}
		shared = New(settings)
	})
	return shared
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying d.
func NewContext(ctx context.Context, d *Debugger) context.Context {
	return context.WithValue(ctx, contextKey{}, d)
}

// FromContext returns the Debugger carried by ctx, or the shared one.
func FromContext(ctx context.Context) *Debugger {
	if d, ok := ctx.Value(contextKey{}).(*Debugger); ok && d != nil {
		return d
	}
	return Shared()
}
