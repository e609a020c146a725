package service

import (
	"context"
	"time"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/repository/memory"
	"ai-tutor-be/pkg/events"
	"ai-tutor-be/pkg/tutor/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ISessionService interface {
	Start(ctx context.Context, req *dto.StartSessionRequest) (*dto.SessionResponse, error)
	Show(ctx context.Context, id string) (*dto.SessionResponse, error)
	End(ctx context.Context, id string) error
	SubmitAnswer(ctx context.Context, id string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	SelectQuestion(ctx context.Context, id string, req *dto.SelectQuestionRequest) (*dto.SessionResponse, error)
	Exists(id string) bool
	Summary() dto.SessionSummary
}

type sessionService struct {
	repo      *memory.SessionRepository
	evaluator session.Evaluator
	listener  session.Listener
	cue       session.AudioCue
	events    EventPublisher
	logger    *zap.Logger
}

// NewSessionService wires new machines to the evaluator and, when non-nil,
// to the listener, the audio cue port and the domain event sink.
func NewSessionService(
	repo *memory.SessionRepository,
	evaluator session.Evaluator,
	listener session.Listener,
	cue session.AudioCue,
	eventPublisher EventPublisher,
	logger *zap.Logger,
) ISessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionService{
		repo:      repo,
		evaluator: evaluator,
		listener:  listener,
		cue:       cue,
		events:    eventPublisher,
		logger:    logger,
	}
}

func (s *sessionService) Start(ctx context.Context, req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	opts := []session.Option{session.WithLogger(s.logger)}
	if s.listener != nil {
		opts = append(opts, session.WithListener(s.listener))
	}
	if s.cue != nil {
		opts = append(opts, session.WithAudioCue(s.cue))
	}

	m := session.New(uuid.NewString(), s.evaluator, opts...)
	s.repo.Save(m)
	m.Start(session.LaunchParams{Course: req.Course, Topic: req.Topic})

	return &dto.SessionResponse{Session: m.Snapshot()}, nil
}

func (s *sessionService) Show(ctx context.Context, id string) (*dto.SessionResponse, error) {
	m, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{Session: m.Snapshot()}, nil
}

func (s *sessionService) End(ctx context.Context, id string) error {
	if _, err := s.find(id); err != nil {
		return err
	}
	s.repo.Delete(id)
	s.logger.Info("session ended", zap.String("session_id", id))
	return nil
}

func (s *sessionService) SubmitAnswer(ctx context.Context, id string, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	m, err := s.find(id)
	if err != nil {
		return nil, err
	}

	out := m.SubmitTurn(ctx, req.Answer)
	state := m.Snapshot()

	if out.Scored {
		s.publishTurn(ctx, state, out)
	}

	emitted := out.Events
	if emitted == nil {
		emitted = []session.Event{}
	}
	return &dto.SubmitAnswerResponse{
		Accepted: len(emitted) > 0,
		Events:   emitted,
		Session:  state,
	}, nil
}

func (s *sessionService) SelectQuestion(ctx context.Context, id string, req *dto.SelectQuestionRequest) (*dto.SessionResponse, error) {
	m, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if err := m.SelectQuestion(*req.Index); err != nil {
		return nil, err
	}
	return &dto.SessionResponse{Session: m.Snapshot()}, nil
}

func (s *sessionService) Exists(id string) bool {
	_, ok := s.repo.Get(id)
	return ok
}

func (s *sessionService) Summary() dto.SessionSummary {
	return dto.SessionSummary{Active: s.repo.Count()}
}

func (s *sessionService) find(id string) (*session.Machine, error) {
	m, ok := s.repo.Get(id)
	if !ok {
		return nil, session.ErrNotFound
	}
	return m, nil
}

func (s *sessionService) publishTurn(ctx context.Context, state session.State, out session.Outcome) {
	if s.events == nil {
		return
	}
	evt := events.NewTurnEvaluated(state.ID, state.Topic, state.Course, out.Retention, out.Average, time.Now())

	// auxiliary: a failed publish never fails the answer
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish TURN_EVALUATED event", zap.String("session_id", state.ID), zap.Error(err))
	}
}
