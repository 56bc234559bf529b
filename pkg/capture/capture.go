package capture

import (
	"context"
	"errors"
)

// Source names accepted by New.
const (
	SourceDir  = "dir"
	SourceHTTP = "http"
	SourceX11  = "x11"
	SourceAuto = "auto"
)

// ErrNoFrame is returned when a capturer has nothing to hand out.
var ErrNoFrame = errors.New("no frame available")

// Capturer is the interface all frame sources must satisfy.
type Capturer interface {
	// Capture returns one JPEG encoded frame.
	Capture(ctx context.Context) ([]byte, error)

	// IsAvailable checks if this capturer can run on the current system
	IsAvailable() bool

	// Name returns the source name ("dir", "http" or "x11")
	Name() string

	// Close cleans up any resources used by the capturer
	Close() error
}
