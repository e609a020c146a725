package session

import (
	"context"
	"errors"
	"time"

	"ai-tutor-be/pkg/tutor/turn"
)

// MachineState is the lifecycle position of a tutoring session
type MachineState string

const (
	StateIdle           MachineState = "IDLE"
	StateAwaitingAnswer MachineState = "AWAITING_ANSWER"
	StateEvaluating     MachineState = "EVALUATING"
	StatePresenting     MachineState = "PRESENTING"
	StateError          MachineState = "ERROR"
)

type Sender string

const (
	SenderUser  Sender = "user"
	SenderTutor Sender = "tutor"
)

// EventKind classifies a message in the session log
type EventKind string

const (
	KindText       EventKind = "text"
	KindStatus     EventKind = "status"
	KindFeedback   EventKind = "feedback"
	KindLesson     EventKind = "lesson"
	KindLoading    EventKind = "loading"
	KindProcessing EventKind = "processing"
	KindError      EventKind = "error"
)

// Event is one entry of the ordered session message log
type Event struct {
	ID        string      `json:"id"`
	Sender    Sender      `json:"sender"`
	Kind      EventKind   `json:"kind"`
	Title     string      `json:"title,omitempty"`
	Text      string      `json:"text"`
	Bucket    turn.Bucket `json:"bucket,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Outcome is the result of one SubmitTurn call. Events is nil when the
// answer was ignored.
type Outcome struct {
	Events []Event
	// Scored is set only on the call that recorded Retention.
	Scored    bool
	Retention float64
	Average   float64
}

// State is a point-in-time copy of a session
type State struct {
	ID                    string          `json:"id"`
	Topic                 string          `json:"topic"`
	Course                string          `json:"course,omitempty"`
	CurrentQuestion       string          `json:"current_question"`
	AvailableQuestions    []turn.Question `json:"available_questions"`
	SelectedQuestionIndex int             `json:"selected_question_index"`
	RetentionHistory      []float64       `json:"retention_history"`
	RetentionAverage      *float64        `json:"retention_average,omitempty"`
	Messages              []Event         `json:"messages"`
	MachineState          MachineState    `json:"machine_state"`
}

// LaunchParams are the values a session is opened with
type LaunchParams struct {
	Course string
	Topic  string
}

// EvaluationRequest is what the workflow receives for one learner answer
type EvaluationRequest struct {
	Topic    string `json:"topic"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Course   string `json:"course,omitempty"`
}

// Evaluator sends a learner answer upstream and returns the raw response body.
// A returned error means the workflow was unreachable or answered with a non-success status.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) ([]byte, error)
}

// EvaluatorFunc adapts a function to Evaluator
type EvaluatorFunc func(ctx context.Context, req EvaluationRequest) ([]byte, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, req EvaluationRequest) ([]byte, error) {
	return f(ctx, req)
}

// AudioCue plays the cue for a retention band
type AudioCue interface {
	Play(ctx context.Context, sessionID string, bucket turn.Bucket) error
}

// Transcript is one recognized utterance or a capture failure
type Transcript struct {
	Text string
	Err  error
}

// SpeechInput captures learner speech and yields transcripts
type SpeechInput interface {
	Start(ctx context.Context) (<-chan Transcript, error)
	Stop() error
}

// Update describes a change to the message log
type Update struct {
	SessionID string       `json:"session_id"`
	Appended  []Event      `json:"appended,omitempty"`
	Removed   []string     `json:"removed,omitempty"`
	State     MachineState `json:"state"`
}

// Listener receives every log change in order
type Listener interface {
	OnUpdate(update Update)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(update Update)

func (f ListenerFunc) OnUpdate(update Update) {
	f(update)
}

var (
	ErrNotFound       = errors.New("session not found")
	ErrNoQuestions    = errors.New("session has no questions to select from")
	ErrQuestionIndex  = errors.New("question index out of range")
	ErrNoTranscript   = errors.New("speech input closed without a transcript")
	ErrNormalizerFail = errors.New("normalizer failed")
)
