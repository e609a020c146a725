package dto

import (
	"ai-tutor-be/pkg/tutor/session"
)

type StartSessionRequest struct {
	Course string `json:"course" validate:"max=100"`
	Topic  string `json:"topic" validate:"max=200"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" validate:"required,max=4000"`
}

type SelectQuestionRequest struct {
	Index *int `json:"index" validate:"required"`
}

type SessionResponse struct {
	Session session.State `json:"session"`
}

// SubmitAnswerResponse carries the events appended by this answer.
// Accepted is false when the answer was ignored (blank, or an evaluation is already running).
type SubmitAnswerResponse struct {
	Accepted bool            `json:"accepted"`
	Events   []session.Event `json:"events"`
	Session  session.State   `json:"session"`
}

type SessionSummary struct {
	Active int `json:"active"`
}
