package guidance

import (
	"context"
	"log"
	"sync"
)

// Voice renders one utterance and returns when it finishes or ctx is
// cancelled, whichever comes first.
type Voice func(ctx context.Context, text string) error

// InterruptingSink plays utterances through a Voice one at a time. A new
// Speak cancels the utterance in progress instead of queuing behind it.
type InterruptingSink struct {
	voice Voice

	mu      sync.Mutex
	cancel  context.CancelFunc
	current uint64
	closed  bool
	wg      sync.WaitGroup
}

func NewInterruptingSink(voice Voice) *InterruptingSink {
	return &InterruptingSink{voice: voice}
}

// Speak starts text and returns without waiting for it to finish. Speak on a
// closed sink is dropped.
func (s *InterruptingSink) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	uctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.current++
	id := s.current
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()

		if err := s.voice(uctx, text); err != nil && uctx.Err() == nil {
			log.Printf("guidance voice failed utterance=%d: %v", id, err)
		}
	}()

	return nil
}

// Flush interrupts the utterance in progress, if any.
func (s *InterruptingSink) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Close interrupts playback, rejects further utterances and waits for the
// voice to return.
func (s *InterruptingSink) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// LogVoice is a Voice that writes utterances to the standard logger.
func LogVoice(ctx context.Context, text string) error {
	log.Printf("speak text=%q", text)
	return nil
}
