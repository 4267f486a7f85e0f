package recognition

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// Frame is a single captured camera image handed to a recognizer.
type Frame struct {
	Data       []byte
	MIME       string
	CapturedAt time.Time
}

// Recognizer identifies one student out of the candidate pool.
// A nil student with a nil error means nobody was recognized.
type Recognizer interface {
	Identify(ctx context.Context, frame Frame, candidates []models.Student) (*models.Student, error)
}

// StubConfig tunes the stand-in recognizer.
type StubConfig struct {
	Delay       time.Duration
	SuccessRate float64
}

// Stub simulates a recognition backend: after an artificial delay it
// picks a random candidate with the configured success probability.
// The frame content is never analyzed. The rand source is injected so
// callers can make the outcome deterministic.
type Stub struct {
	cfg StubConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStub constructs a stub recognizer. A nil source falls back to a
// time-seeded one.
func NewStub(cfg StubConfig, src rand.Source) *Stub {
	if cfg.SuccessRate < 0 || cfg.SuccessRate > 1 {
		cfg.SuccessRate = 0.7
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Stub{cfg: cfg, rng: rand.New(src)}
}

// Identify waits out the configured delay, then either picks a random
// candidate or reports no match. An empty candidate pool never matches.
func (s *Stub) Identify(ctx context.Context, frame Frame, candidates []models.Student) (*models.Student, error) {
	if s.cfg.Delay > 0 {
		timer := time.NewTimer(s.cfg.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	idx := s.rng.Intn(len(candidates))
	s.mu.Unlock()

	if roll >= s.cfg.SuccessRate {
		return nil, nil
	}

	match := candidates[idx]
	return &match, nil
}
