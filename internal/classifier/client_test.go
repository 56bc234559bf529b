package classifier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deepworkai/deepwork/internal/focus"
)

func newClassifierServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("FormFile(image) error: %v", err)
		} else {
			data, _ := io.ReadAll(file)
			if string(data) != "jpeg-bytes" {
				t.Errorf("uploaded %q, want jpeg-bytes", data)
			}
			if header.Filename != "webcam.jpg" {
				t.Errorf("filename = %s, want webcam.jpg", header.Filename)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		want        focus.Classification
		wantErr     bool
		wantInvalid bool
	}{
		{
			name:   "focused",
			status: http.StatusOK,
			body:   `{"focusState":"Focused","reason":"","focusLevel":10}`,
			want:   focus.Classification{State: focus.StateFocused, Level: 10},
		},
		{
			name:   "phone with override",
			status: http.StatusOK,
			body:   `{"focusState":"Distracted","reason":"Phone","focusLevel":2,"override_message":"Put the phone away"}`,
			want:   focus.Classification{State: focus.StateDistracted, Reason: "Phone", Level: 2, OverrideMessage: "Put the phone away"},
		},
		{
			name:   "fractional level",
			status: http.StatusOK,
			body:   `{"focusState":"Distracted","reason":"Likely distraction: drowsy","focusLevel":5.6}`,
			want:   focus.Classification{State: focus.StateDistracted, Reason: "Likely distraction: drowsy", Level: 6},
		},
		{
			name:        "unknown state",
			status:      http.StatusOK,
			body:        `{"focusState":"Sleeping","focusLevel":1}`,
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "missing state",
			status:      http.StatusOK,
			body:        `{}`,
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"error":"model not loaded"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newClassifierServer(t, tt.status, tt.body)
			defer srv.Close()

			c, err := NewClient(srv.URL+"/deepwork_focus", time.Second)
			if err != nil {
				t.Fatalf("NewClient() error: %v", err)
			}

			got, err := c.Classify(context.Background(), []byte("jpeg-bytes"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Classify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, focus.ErrInvalidClassification) != tt.wantInvalid {
				t.Errorf("Classify() error = %v, want ErrInvalidClassification: %v", err, tt.wantInvalid)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassifyContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Classify(ctx, []byte("jpeg-bytes")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Classify() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient("", time.Second); err == nil {
		t.Error("NewClient(\"\") should fail")
	}
}
