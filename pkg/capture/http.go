package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxFrameBytes bounds a single snapshot download.
const maxFrameBytes = 8 << 20

// HTTPCapturer fetches a still image from a webcam snapshot URL, such as the
// ones served by mjpg-streamer or phone webcam apps.
type HTTPCapturer struct {
	url    string
	client *http.Client
}

// NewHTTPCapturer creates a capturer for the given snapshot URL.
func NewHTTPCapturer(url string) *HTTPCapturer {
	return &HTTPCapturer{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Capture downloads one snapshot.
func (h *HTTPCapturer) Capture(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot request returned %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("snapshot has content type %q, want an image", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoFrame
	}
	return data, nil
}

func (h *HTTPCapturer) IsAvailable() bool {
	return h.url != ""
}

func (h *HTTPCapturer) Name() string {
	return SourceHTTP
}

func (h *HTTPCapturer) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
