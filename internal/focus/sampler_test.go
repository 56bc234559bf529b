package focus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	err error
}

func (f fakeSource) Capture(ctx context.Context) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("jpeg"), nil
}

type fakeClassifier struct {
	result Classification
	err    error
	block  bool
}

func (f fakeClassifier) Classify(ctx context.Context, image []byte) (Classification, error) {
	if f.block {
		<-ctx.Done()
		return Classification{}, ctx.Err()
	}
	return f.result, f.err
}

type errorRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *errorRecorder) record(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *errorRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func TestSampler(t *testing.T) {
	tests := []struct {
		name       string
		source     FrameSource
		classifier Classifier
		wantSample bool
		wantErrors int
		want       FrameSample
	}{
		{
			name:       "focused",
			source:     fakeSource{},
			classifier: fakeClassifier{result: Classification{State: StateFocused, Level: 9}},
			wantSample: true,
			want:       FrameSample{State: StateFocused, Category: CategoryNone, Level: 9},
		},
		{
			name:       "phone with level clamp",
			source:     fakeSource{},
			classifier: fakeClassifier{result: Classification{State: StateDistracted, Reason: "Phone", Level: 14}},
			wantSample: true,
			want:       FrameSample{State: StateDistracted, Category: CategoryPhone, Reason: "Phone", Level: 10},
		},
		{
			name:       "classifier outage",
			source:     fakeSource{},
			classifier: fakeClassifier{err: errors.New("connection refused")},
			wantSample: true,
			wantErrors: 1,
			want:       FrameSample{State: StateDistracted, Category: CategoryInactiveModel, Reason: RawReasonInactiveModel},
		},
		{
			name:       "invalid response",
			source:     fakeSource{},
			classifier: fakeClassifier{err: ErrInvalidClassification},
			wantErrors: 1,
		},
		{
			name:       "unknown state",
			source:     fakeSource{},
			classifier: fakeClassifier{result: Classification{State: "sleepy"}},
			wantErrors: 1,
		},
		{
			name:       "capture failure",
			source:     fakeSource{err: errors.New("no camera")},
			classifier: fakeClassifier{},
			wantErrors: 1,
		},
		{
			name:       "timeout",
			source:     fakeSource{},
			classifier: fakeClassifier{block: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &errorRecorder{}
			s := NewSampler(tt.source, tt.classifier, 20*time.Millisecond)
			s.OnError(rec.record)

			s.Request(context.Background())
			s.Wait()
			got := s.Drain()

			if !tt.wantSample {
				if len(got) != 0 {
					t.Errorf("Drain() = %+v, want no samples", got)
				}
			} else {
				if len(got) != 1 {
					t.Fatalf("Drain() returned %d samples, want 1", len(got))
				}
				g := got[0]
				if g.State != tt.want.State || g.Category != tt.want.Category || g.Reason != tt.want.Reason || g.Level != tt.want.Level {
					t.Errorf("sample = %+v, want %+v", g, tt.want)
				}
				if g.Timestamp.IsZero() {
					t.Error("sample has no timestamp")
				}
			}
			if rec.count() != tt.wantErrors {
				t.Errorf("reported %d errors, want %d", rec.count(), tt.wantErrors)
			}
		})
	}
}

func TestSamplerOverrideMessage(t *testing.T) {
	s := NewSampler(fakeSource{}, fakeClassifier{result: Classification{
		State:           StateFocused,
		Level:           8,
		OverrideMessage: "Calibrating, please sit still",
	}}, time.Second)

	s.Request(context.Background())
	s.Wait()

	if got := s.OverrideMessage(); got != "Calibrating, please sit still" {
		t.Errorf("OverrideMessage() = %q", got)
	}
}

func TestSamplerDoesNotBlock(t *testing.T) {
	s := NewSampler(fakeSource{}, fakeClassifier{result: Classification{State: StateFocused, Level: 10}}, time.Second)

	for i := 0; i < 3*WindowSize; i++ {
		s.Request(context.Background())
	}
	s.Wait()

	if got := len(s.Drain()); got != 2*WindowSize {
		t.Errorf("Drain() returned %d samples, want buffer size %d", got, 2*WindowSize)
	}
	if got := len(s.Drain()); got != 0 {
		t.Errorf("second Drain() returned %d samples, want 0", got)
	}
}
