package focus

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// FrameSource captures one image frame.
type FrameSource interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Classifier classifies one image frame.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (Classification, error)
}

// ErrInvalidClassification is returned for responses without a usable focus state.
var ErrInvalidClassification = errors.New("invalid classification")

// Sampler captures and classifies one frame per request without blocking
// the caller. Each request is bounded by the sampler timeout.
type Sampler struct {
	source     FrameSource
	classifier Classifier
	timeout    time.Duration
	now        func() time.Time

	results  chan FrameSample
	inflight sync.WaitGroup

	mu       sync.Mutex
	override string
	onError  func(error)
}

// NewSampler creates a sampler. timeout bounds each capture+classify call.
func NewSampler(source FrameSource, classifier Classifier, timeout time.Duration) *Sampler {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Sampler{
		source:     source,
		classifier: classifier,
		timeout:    timeout,
		now:        time.Now,
		results:    make(chan FrameSample, 2*WindowSize),
	}
}

// OnError registers a callback for capture and classifier failures.
func (s *Sampler) OnError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// Request starts one asynchronous sample.
func (s *Sampler) Request(ctx context.Context) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		sample, ok := s.sample(ctx)
		if !ok {
			return
		}
		select {
		case s.results <- sample:
		default:
			log.Printf("sampler: result buffer full, dropping sample")
		}
	}()
}

// Drain returns all completed samples without blocking.
func (s *Sampler) Drain() []FrameSample {
	var out []FrameSample
	for {
		select {
		case sample := <-s.results:
			out = append(out, sample)
		default:
			return out
		}
	}
}

// Wait blocks until all in-flight requests have finished.
func (s *Sampler) Wait() {
	s.inflight.Wait()
}

// OverrideMessage returns the latest override message from the classifier.
func (s *Sampler) OverrideMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.override
}

func (s *Sampler) sample(ctx context.Context) (FrameSample, bool) {
	image, err := s.source.Capture(ctx)
	if err != nil {
		s.report(err)
		return FrameSample{}, false
	}

	result, err := s.classifier.Classify(ctx, image)
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return FrameSample{}, false
	case errors.Is(err, ErrInvalidClassification):
		s.report(err)
		return FrameSample{}, false
	case err != nil:
		s.report(err)
		return FrameSample{
			State:     StateDistracted,
			Category:  CategoryInactiveModel,
			Reason:    RawReasonInactiveModel,
			Level:     0,
			Timestamp: s.now(),
		}, true
	}

	if !result.State.Valid() {
		s.report(ErrInvalidClassification)
		return FrameSample{}, false
	}

	if result.OverrideMessage != "" {
		s.mu.Lock()
		s.override = result.OverrideMessage
		s.mu.Unlock()
	}

	return FrameSample{
		State:     result.State,
		Category:  CategoryFromReason(result.Reason),
		Reason:    result.Reason,
		Level:     clampLevel(result.Level),
		Timestamp: s.now(),
	}, true
}

func (s *Sampler) report(err error) {
	s.mu.Lock()
	fn := s.onError
	s.mu.Unlock()
	if fn != nil {
		fn(err)
		return
	}
	log.Printf("sampler: %v", err)
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 10 {
		return 10
	}
	return level
}
