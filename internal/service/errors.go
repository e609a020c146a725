package service

import (
	"context"
	"errors"

	"ai-tutor-be/pkg/course"
	"ai-tutor-be/pkg/events"
	"ai-tutor-be/pkg/tutor/session"

	"github.com/gofiber/fiber/v2"
)

// EventPublisher is the domain event sink (NATS, or the in-process progress tracker)
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ErrorStatus maps service errors to HTTP statuses for the error middleware
func ErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, session.ErrNoQuestions), errors.Is(err, session.ErrQuestionIndex):
		return fiber.StatusUnprocessableEntity, true
	case errors.Is(err, course.ErrNotPDF):
		return fiber.StatusUnsupportedMediaType, true
	}
	return 0, false
}
