package sink

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/nikhilbhat/eventformatter/internal/event"
)

// Stdout writes one JSON line per output event.
type Stdout struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStdout creates a JSONL sink. A nil writer means os.Stdout.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{enc: json.NewEncoder(w)}
}

func (s *Stdout) Emit(_ context.Context, out event.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(out)
}

func (s *Stdout) Close() error { return nil }
