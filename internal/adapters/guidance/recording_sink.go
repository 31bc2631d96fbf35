package guidance

import (
	"context"
	"sync"
)

// RecordingSink keeps every spoken text in order. Useful in tests and for
// dry runs of the walk simulator.
type RecordingSink struct {
	mu    sync.Mutex
	texts []string
}

func (r *RecordingSink) Speak(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func (r *RecordingSink) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}
