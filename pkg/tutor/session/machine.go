// Package session runs one tutoring dialogue.
//
// A Machine accepts learner answers, forwards them to the workflow evaluator,
// normalizes whatever comes back and appends the resulting events to an
// ordered message log. Only one evaluation may be in flight per session; a
// second Submit during evaluation is ignored.
//
// Side effects outside the log (audio cues, speech capture, fan-out to
// connected clients) go through the AudioCue, SpeechInput and Listener ports.
package session

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"ai-tutor-be/pkg/tutor/retention"
	"ai-tutor-be/pkg/tutor/turn"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgEvaluating = "Evaluating your answer"
	msgProcessing = "Processing your answer..."
	msgFailure    = "Sorry, I had trouble evaluating your answer."
)

// Machine is the state machine of a single session
type Machine struct {
	mu sync.Mutex

	id        string
	evaluator Evaluator
	cue       AudioCue
	listener  Listener
	logger    *zap.Logger
	normalize func([]byte) turn.TutorTurn
	now       func() time.Time

	state           MachineState
	topic           string
	course          string
	currentQuestion string
	available       []turn.Question
	selected        int
	tracker         *retention.Tracker
	messages        []Event
	placeholderID   string
}

// Option configures a Machine
type Option func(*Machine)

func WithAudioCue(cue AudioCue) Option {
	return func(m *Machine) { m.cue = cue }
}

func WithListener(l Listener) Option {
	return func(m *Machine) { m.listener = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithNormalizer replaces the payload normalizer
func WithNormalizer(fn func([]byte) turn.TutorTurn) Option {
	return func(m *Machine) { m.normalize = fn }
}

// New creates an idle machine
func New(id string, evaluator Evaluator, opts ...Option) *Machine {
	m := &Machine{
		id:              id,
		evaluator:       evaluator,
		logger:          zap.NewNop(),
		normalize:       turn.Normalize,
		now:             time.Now,
		state:           StateIdle,
		topic:           DefaultTopic,
		currentQuestion: openQuestion,
		tracker:         retention.NewTracker(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) ID() string {
	return m.id
}

// Start resolves topic and opening question and emits the greeting.
// Starting an already started session does nothing.
func (m *Machine) Start(params LaunchParams) []Event {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return nil
	}

	course := strings.TrimSpace(params.Course)
	var greeting string
	if course != "" {
		m.course = course
		m.topic = course
		m.currentQuestion = InitialQuestion(course)
		greeting = fmt.Sprintf("Let's start learning %s!", course)
	} else {
		if topic := strings.TrimSpace(params.Topic); topic != "" {
			m.topic = topic
		}
		m.currentQuestion = openQuestion
		greeting = fmt.Sprintf("Let's start with the topic: %s", m.topic)
	}

	emitted := []Event{
		m.appendEvent(SenderTutor, KindText, "", greeting),
		m.appendEvent(SenderTutor, KindText, "", m.currentQuestion),
	}
	m.state = StateAwaitingAnswer
	update := Update{SessionID: m.id, Appended: emitted, State: m.state}
	m.mu.Unlock()

	m.logger.Info("session started", zap.String("session_id", m.id), zap.String("topic", m.topic), zap.String("course", m.course))
	m.publish(update)
	return emitted
}

// Submit evaluates a learner answer. It returns the events appended during
// this cycle, starting with the learner's own message. Blank answers, and
// answers submitted while an evaluation is in flight, are ignored.
func (m *Machine) Submit(ctx context.Context, answer string) []Event {
	return m.SubmitTurn(ctx, answer).Events
}

// SubmitTurn is Submit that also reports the retention score this call recorded.
func (m *Machine) SubmitTurn(ctx context.Context, answer string) Outcome {
	m.mu.Lock()
	if strings.TrimSpace(answer) == "" || m.state == StateEvaluating || m.state == StateIdle {
		m.mu.Unlock()
		return Outcome{}
	}

	userEvent := m.appendEvent(SenderUser, KindText, "", answer)
	placeholder := m.appendEvent(SenderTutor, KindLoading, "", msgEvaluating)
	m.placeholderID = placeholder.ID
	m.state = StateEvaluating

	req := EvaluationRequest{
		Topic:    m.topic,
		Question: m.activeQuestionLocked(),
		Answer:   answer,
		Course:   m.course,
	}
	m.mu.Unlock()

	m.publish(Update{SessionID: m.id, Appended: []Event{userEvent, placeholder}, State: StateEvaluating})

	payload, err := m.evaluator.Evaluate(ctx, req)

	m.mu.Lock()
	removed := m.removePlaceholderLocked()

	var (
		emitted []Event
		cue     *turn.Bucket
		out     Outcome
	)
	if err != nil {
		emitted = m.failLocked(err)
	} else if t, nerr := m.normalizeSafely(payload); nerr != nil {
		emitted = m.failLocked(nerr)
	} else if !t.Terminal() {
		emitted = []Event{m.appendEvent(SenderTutor, KindProcessing, "", msgProcessing)}
	} else {
		m.state = StatePresenting
		emitted, cue = m.presentLocked(t)
		if t.Retention != nil {
			out.Scored = true
			out.Retention = *t.Retention
			out.Average = m.tracker.Average()
		}
	}
	m.state = StateAwaitingAnswer

	update := Update{SessionID: m.id, Appended: emitted, State: m.state}
	if removed != "" {
		update.Removed = []string{removed}
	}
	m.mu.Unlock()

	if cue != nil && m.cue != nil {
		if err := m.cue.Play(ctx, m.id, *cue); err != nil {
			m.logger.Warn("audio cue failed", zap.String("session_id", m.id), zap.Error(err))
		}
	}
	m.publish(update)

	out.Events = append([]Event{userEvent}, emitted...)
	return out
}

// Dictate captures one utterance from speech input and submits it
func (m *Machine) Dictate(ctx context.Context, in SpeechInput) ([]Event, error) {
	transcripts, err := in.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("start speech input: %w", err)
	}

	var tr Transcript
	select {
	case <-ctx.Done():
		_ = in.Stop()
		return nil, ctx.Err()
	case got, ok := <-transcripts:
		if err := in.Stop(); err != nil {
			m.logger.Warn("speech input stop failed", zap.String("session_id", m.id), zap.Error(err))
		}
		if !ok {
			return nil, ErrNoTranscript
		}
		tr = got
	}

	if tr.Err != nil {
		return nil, fmt.Errorf("speech input: %w", tr.Err)
	}
	return m.Submit(ctx, tr.Text), nil
}

// SelectQuestion makes one of the offered questions the active one
func (m *Machine) SelectQuestion(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.available) == 0 {
		return ErrNoQuestions
	}
	if index < 0 || index >= len(m.available) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrQuestionIndex, index, len(m.available))
	}
	m.selected = index
	m.currentQuestion = m.available[index].Question
	return nil
}

// ActiveQuestion is the question the next answer will be evaluated against
func (m *Machine) ActiveQuestion() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeQuestionLocked()
}

func (m *Machine) Evaluating() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateEvaluating
}

// Snapshot copies the current session state
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		ID:                    m.id,
		Topic:                 m.topic,
		Course:                m.course,
		CurrentQuestion:       m.currentQuestion,
		AvailableQuestions:    append([]turn.Question{}, m.available...),
		SelectedQuestionIndex: m.selected,
		RetentionHistory:      m.tracker.History(),
		Messages:              append([]Event{}, m.messages...),
		MachineState:          m.state,
	}
	if m.tracker.Len() > 0 {
		avg := m.tracker.Average()
		s.RetentionAverage = &avg
	}
	return s
}

func (m *Machine) activeQuestionLocked() string {
	if len(m.available) > 0 {
		return m.available[m.selected].Question
	}
	return m.currentQuestion
}

// presentLocked appends the events of a terminal turn in their fixed order:
// status line, feedback, lesson blocks. Question state is updated last.
func (m *Machine) presentLocked(t turn.TutorTurn) ([]Event, *turn.Bucket) {
	var (
		emitted []Event
		cue     *turn.Bucket
	)

	var parts []string
	if t.Language != "" {
		parts = append(parts, "Language: "+strings.ToUpper(t.Language))
	}
	if t.LessonKind != "" {
		parts = append(parts, "Lesson: "+string(t.LessonKind))
	}
	var bucket turn.Bucket
	if t.Retention != nil {
		m.tracker.Record(*t.Retention)
		pct, _ := t.Percent()
		bucket, _ = t.Bucket()
		cue = &bucket
		parts = append(parts, fmt.Sprintf("Retention Score: %d%% (average %d%%)", pct, percent(m.tracker.Average())))
	}
	if len(parts) > 0 {
		ev := m.newEvent(SenderTutor, KindStatus, "", strings.Join(parts, " | "))
		ev.Bucket = bucket
		m.messages = append(m.messages, ev)
		emitted = append(emitted, ev)
	}

	if t.Feedback != "" {
		emitted = append(emitted, m.appendEvent(SenderTutor, KindFeedback, "", t.Feedback))
	}

	for _, block := range t.LessonBlocks {
		emitted = append(emitted, m.appendEvent(SenderTutor, KindLesson, block.Title, block.Content))
	}

	if len(t.Questions) > 0 {
		m.available = append([]turn.Question{}, t.Questions...)
		m.selected = 0
		m.currentQuestion = m.available[0].Question
	}

	return emitted, cue
}

func (m *Machine) failLocked(err error) []Event {
	m.state = StateError
	m.logger.Warn("evaluation failed", zap.String("session_id", m.id), zap.Error(err))
	return []Event{m.appendEvent(SenderTutor, KindError, "", msgFailure)}
}

func (m *Machine) normalizeSafely(payload []byte) (t turn.TutorTurn, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrNormalizerFail, r)
		}
	}()
	return m.normalize(payload), nil
}

func (m *Machine) removePlaceholderLocked() string {
	id := m.placeholderID
	m.placeholderID = ""
	if id == "" {
		return ""
	}
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].ID == id {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			return id
		}
	}
	return ""
}

func (m *Machine) newEvent(sender Sender, kind EventKind, title, text string) Event {
	return Event{
		ID:        uuid.NewString(),
		Sender:    sender,
		Kind:      kind,
		Title:     title,
		Text:      text,
		CreatedAt: m.now(),
	}
}

func (m *Machine) appendEvent(sender Sender, kind EventKind, title, text string) Event {
	ev := m.newEvent(sender, kind, title, text)
	m.messages = append(m.messages, ev)
	return ev
}

func (m *Machine) publish(update Update) {
	if m.listener == nil {
		return
	}
	m.listener.OnUpdate(update)
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}
