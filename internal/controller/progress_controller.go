package controller

import (
	"context"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type ProgressReader interface {
	Summary(ctx context.Context) (*dto.ProgressResponse, error)
}

type ProgressController struct {
	progress ProgressReader
	sessions func() dto.SessionSummary
}

func NewProgressController(progress ProgressReader, sessions func() dto.SessionSummary) *ProgressController {
	return &ProgressController{progress: progress, sessions: sessions}
}

func (c *ProgressController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/progress/v1")
	h.Get("", c.Summary)
	h.Get("/sessions", c.Sessions)
}

func (c *ProgressController) Summary(ctx *fiber.Ctx) error {
	res, err := c.progress.Summary(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get progress", res))
}

func (c *ProgressController) Sessions(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get sessions", c.sessions()))
}
