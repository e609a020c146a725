package controller

import (
	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/serverutils"
	"ai-tutor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRetrievalController interface {
	RegisterRoutes(r fiber.Router)
	Context(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Query(ctx *fiber.Ctx) error
}

type retrievalController struct {
	service service.IRetrievalService
}

func NewRetrievalController(service service.IRetrievalService) IRetrievalController {
	return &retrievalController{service: service}
}

func (c *retrievalController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/retrieval/v1")
	h.Get("/context", c.Context)
	h.Post("/search", c.Search)
	h.Post("/query", c.Query)
}

func (c *retrievalController) Context(ctx *fiber.Ctx) error {
	topic := ctx.Query("topic")
	course := ctx.Query("course")
	if topic == "" || course == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameters topic and course are required")
	}

	res, err := c.service.Context(ctx.UserContext(), topic, course)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get context", res))
}

func (c *retrievalController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success semantic search", res))
}

// Query answers the workflow's retrieval call with a bare body, not the
// BaseResponse envelope, since the workflow reads courseContent at the top level.
func (c *retrievalController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Query(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
