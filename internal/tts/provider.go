// Package tts converts reply text into audio.
package tts

import "context"

// Provider synthesizes speech for the given text in the given voice and
// returns the encoded clip.
type Provider interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}
