// Package ledgergrid infers the block layout of append-only ledger sheets
// and keeps their running-balance formulas consistent.
package ledgergrid

import (
	"time"

	"github.com/ukaji3/ledgergrid-go/pkg/ledgergrid/config"
	"go.uber.org/zap"
)

// Options configures an Engine.
type Options struct {
	// Config holds the sheet layout, commands and colours.
	Config config.Config
	// Logger receives structured diagnostics. If nil, logging is disabled.
	Logger *zap.Logger
	// Now stamps new blocks. If nil, time.Now is used.
	Now func() time.Time
}

// DefaultOptions returns options with the built-in configuration.
func DefaultOptions() Options {
	return Options{
		Config: config.Default(),
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}
