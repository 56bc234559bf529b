package capture

import (
	"fmt"
	"os"
)

// Options selects and configures a frame source.
type Options struct {
	Source string
	Dir    string
	URL    string
}

// New creates the capturer named by opts.Source. "auto" picks a snapshot
// URL, then a replay directory, then the X display.
func New(opts Options) (Capturer, error) {
	switch opts.Source {
	case SourceDir:
		return NewDirCapturer(opts.Dir)
	case SourceHTTP:
		if opts.URL == "" {
			return nil, fmt.Errorf("http capture source requires a snapshot URL")
		}
		return NewHTTPCapturer(opts.URL), nil
	case SourceX11:
		return NewX11Capturer()
	case SourceAuto, "":
		switch {
		case opts.URL != "":
			return NewHTTPCapturer(opts.URL), nil
		case opts.Dir != "":
			return NewDirCapturer(opts.Dir)
		case DetectDisplayServer() == "x11":
			return NewX11Capturer()
		}
		return nil, fmt.Errorf("no capture source available: set a snapshot URL, a frame directory or run under X11")
	default:
		return nil, fmt.Errorf("unknown capture source %q", opts.Source)
	}
}

// DetectDisplayServer reports "wayland", "x11" or "unknown".
func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
