// Package sink delivers formatted events to an external destination.
package sink

import (
	"context"
	"fmt"

	"github.com/nikhilbhat/eventformatter/internal/config"
	"github.com/nikhilbhat/eventformatter/internal/event"
)

// Sink accepts formatted events for persistence or forwarding.
// Implementations must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, out event.Output) error
	Close() error
}

// FromConfig builds the sink selected in the config.
func FromConfig(cfg config.SinkConf) (Sink, error) {
	switch cfg.Type {
	case "stdout":
		return NewStdout(nil), nil
	case "redis":
		return NewRedis(cfg.Redis)
	case "none", "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("sink: unknown type %q", cfg.Type)
	}
}

// Noop discards all output events.
type Noop struct{}

func (Noop) Emit(context.Context, event.Output) error { return nil }
func (Noop) Close() error                             { return nil }
