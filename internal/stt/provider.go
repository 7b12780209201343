// Package stt turns recorded audio clips into text.
package stt

import "context"

// Provider converts one finished clip into a transcript. Implementations
// must be safe for concurrent use.
type Provider interface {
	Transcribe(ctx context.Context, clip []byte) (string, error)
}
