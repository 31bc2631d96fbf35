package ports

import "context"

// Output for spoken guidance. Speak interrupts any utterance in progress
// rather than queuing behind it.
type GuidanceSink interface {
	Speak(ctx context.Context, text string) error
}
