package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/logger"
	"ai-tutor-be/pkg/events"
	pktNats "ai-tutor-be/pkg/nats"
	"ai-tutor-be/pkg/tutor/retention"
)

const (
	moduleProgress  = "ProgressService"
	progressDurable = "progress-worker"
	generalCourse   = "general"
)

// ProgressService aggregates retention scores per course from TURN_EVALUATED events.
// It consumes them from NATS when a subscriber is configured; otherwise it is
// handed the events directly through Publish.
type ProgressService struct {
	mu         sync.RWMutex
	courses    map[string]*retention.Tracker
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewProgressService(sub *pktNats.Subscriber, log logger.ILogger) *ProgressService {
	return &ProgressService{
		courses:    make(map[string]*retention.Tracker),
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the event bus. Without a subscriber it does nothing.
func (s *ProgressService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		return nil
	}
	if err := s.subscriber.Subscribe(ctx, events.TypeTurnEvaluated, progressDurable, s.handleEvent); err != nil {
		return err
	}
	s.logger.Info(moduleProgress, "Progress service started", map[string]interface{}{"event": events.TypeTurnEvaluated})
	return nil
}

// Publish implements EventPublisher for deployments without NATS
func (s *ProgressService) Publish(ctx context.Context, event events.Event) error {
	if event.EventType() != events.TypeTurnEvaluated {
		return nil
	}
	return s.handleEvent(ctx, event)
}

func (s *ProgressService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	score, ok := payload["retention"].(float64)
	if !ok {
		// malformed events are dropped, a redelivery would not fix them
		s.logger.Warn(moduleProgress, "Event without numeric retention", map[string]interface{}{"payload": payload})
		return nil
	}

	key, _ := payload["course"].(string)
	if key == "" {
		key, _ = payload["topic"].(string)
	}
	if key == "" {
		key = generalCourse
	}

	s.mu.Lock()
	tr, ok := s.courses[key]
	if !ok {
		tr = retention.NewTracker()
		s.courses[key] = tr
	}
	tr.Record(score)
	s.mu.Unlock()

	s.logger.Debug(moduleProgress, fmt.Sprintf("Recorded retention for %s", key), map[string]interface{}{"retention": score})
	return nil
}

func (s *ProgressService) Summary(ctx context.Context) (*dto.ProgressResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]dto.CourseProgress, 0, len(s.courses))
	for name, tr := range s.courses {
		latest, _ := tr.Latest()
		out = append(out, dto.CourseProgress{
			Course:           name,
			Evaluations:      tr.Len(),
			RetentionAverage: tr.Average(),
			Latest:           latest,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Course < out[j].Course })

	return &dto.ProgressResponse{Courses: out}, nil
}
