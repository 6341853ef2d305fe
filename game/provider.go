package game

import (
	"context"
	"fmt"
)

// ImageProvider supplies count distinct images for a new deck.
type ImageProvider interface {
	FetchImages(ctx context.Context, count int) ([]Image, error)
}

// ProviderError is the only failure an ImageProvider reports: transport, server or decoding.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("image provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
