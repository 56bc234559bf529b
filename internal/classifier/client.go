package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/deepworkai/deepwork/internal/focus"
)

const (
	formField = "image"
	fileName  = "webcam.jpg"
)

// Client posts frames to the focus classifier service.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a classifier client for the given endpoint.
func NewClient(url string, timeout time.Duration) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("classifier URL not configured")
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// response is the JSON body returned by the classifier.
type response struct {
	FocusState      string  `json:"focusState"`
	Reason          string  `json:"reason"`
	FocusLevel      float64 `json:"focusLevel"`
	OverrideMessage string  `json:"override_message"`
	Error           string  `json:"error"`
}

// Classify uploads one JPEG frame and decodes the verdict.
func (c *Client) Classify(ctx context.Context, image []byte) (focus.Classification, error) {
	body, contentType, err := encodeFrame(image)
	if err != nil {
		return focus.Classification{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return focus.Classification{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return focus.Classification{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return focus.Classification{}, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if r.Error != "" {
			return focus.Classification{}, fmt.Errorf("classifier returned %d: %s", resp.StatusCode, r.Error)
		}
		return focus.Classification{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	state := focus.State(r.FocusState)
	if !state.Valid() {
		return focus.Classification{}, fmt.Errorf("%w: focusState %q", focus.ErrInvalidClassification, r.FocusState)
	}

	return focus.Classification{
		State:           state,
		Reason:          r.Reason,
		Level:           int(math.Round(r.FocusLevel)),
		OverrideMessage: r.OverrideMessage,
	}, nil
}

func encodeFrame(image []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(formField, fileName)
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", fmt.Errorf("writing frame: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
