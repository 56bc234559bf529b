package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/deepworkai/deepwork/internal/config"
	"github.com/deepworkai/deepwork/internal/database"
	"github.com/deepworkai/deepwork/internal/focus"
	"github.com/deepworkai/deepwork/internal/models"
)

// Store is the part of the repository the tracker writes to
type Store interface {
	SaveSummary(sum focus.Summary, notes string, overwrite bool) (*models.StudySession, error)
	CreateErrorLog(errorLog *models.ErrorLog) error
}

// Recorder receives every finished session, e.g. for metrics export
type Recorder interface {
	RecordSession(ctx context.Context, sum focus.Summary)
}

// Service drives one focus session at a time against the wall clock: it
// feeds classified frames into the session and advances it once a second
type Service struct {
	config   *config.Config
	repo     Store
	sampler  *focus.Sampler
	recorder Recorder
	second   time.Duration
	now      func() time.Time

	mu       sync.Mutex
	current  *focus.Session
	stopChan chan struct{}
	running  bool
}

func NewService(cfg *config.Config, repo Store, source focus.FrameSource, classifier focus.Classifier) *Service {
	s := &Service{
		config:  cfg,
		repo:    repo,
		sampler: focus.NewSampler(source, classifier, cfg.Classifier.Timeout),
		second:  time.Second,
		now:     time.Now,
	}
	s.sampler.OnError(func(err error) {
		s.storeError("sampler", err)
	})
	return s
}

// SetRecorder registers a recorder for finished sessions
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// Run drives session until it ends, the context is cancelled or Stop is
// called, and returns its summary. Cancellation stops the session manually
func (s *Service) Run(ctx context.Context, session *focus.Session) (focus.Summary, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return focus.Summary{}, fmt.Errorf("tracker is already running")
	}
	s.running = true
	s.current = session
	s.stopChan = make(chan struct{})
	stopChan := s.stopChan
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Printf("Starting session %s with %v tick interval", session.ID(), s.config.Session.TickInterval)

	ticker := time.NewTicker(s.config.Session.TickInterval)
	defer ticker.Stop()

	next := s.now().Add(s.second)
	for {
		select {
		case <-ctx.Done():
			log.Println("Session stopped by context")
			return s.finish(ctx, session)

		case <-stopChan:
			log.Println("Session stopped")
			return s.finish(ctx, session)

		case <-session.Done():
			return s.finish(ctx, session)

		case <-ticker.C:
			// Catch up on every whole second that elapsed since the last step
			for now := s.now(); !now.Before(next); next = next.Add(s.second) {
				if err := s.step(ctx, session); err != nil {
					if errors.Is(err, focus.ErrSessionEnded) {
						break
					}
					s.storeError("tracker", err)
				}
			}
		}
	}
}

// Stop ends the running session manually
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Current returns the session being driven, or the last one
func (s *Service) Current() *focus.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// step runs one session second: ingest finished samples, request the next
// frame and advance the timer
func (s *Service) step(ctx context.Context, session *focus.Session) error {
	for _, sample := range s.sampler.Drain() {
		if err := session.Ingest(sample); err != nil {
			return err
		}
	}
	if msg := s.sampler.OverrideMessage(); msg != "" {
		session.SetOverrideMessage(msg)
	}
	if session.Sampling() {
		s.sampler.Request(ctx)
	}
	return session.Tick()
}

func (s *Service) finish(ctx context.Context, session *focus.Session) (focus.Summary, error) {
	sum, err := session.Stop()
	if err != nil && !errors.Is(err, focus.ErrSessionEnded) {
		return focus.Summary{}, err
	}
	s.sampler.Wait()
	s.sampler.Drain()

	log.Printf("Session %s finished: %s, focus %ds, distracted %ds",
		sum.SessionID, sum.EndKind, sum.FocusSeconds, sum.DistractedSeconds)

	if s.recorder != nil {
		s.recorder.RecordSession(context.WithoutCancel(ctx), sum)
	}
	return sum, nil
}

// Save persists a finished session. It returns database.ErrSessionExists
// when the session number is taken and overwrite is false
func (s *Service) Save(sum focus.Summary, notes string, overwrite bool) (*models.StudySession, error) {
	record, err := s.repo.SaveSummary(sum, notes, overwrite)
	if err != nil {
		if !errors.Is(err, database.ErrSessionExists) {
			s.storeError("database", err)
		}
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	log.Printf("Saved session %s as #%d of goal %d", sum.SessionID, record.SessionNo, record.ProjectID)
	return record, nil
}

func (s *Service) storeError(source string, err error) {
	errorLog := &models.ErrorLog{
		Timestamp: s.now(),
		Source:    source,
		ErrorMsg:  err.Error(),
	}
	if current := s.Current(); current != nil {
		errorLog.SessionID = current.ID()
	}

	if dbErr := s.repo.CreateErrorLog(errorLog); dbErr != nil {
		log.Printf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	} else {
		log.Printf("Error logged to database: %v", err)
	}
}
