package controller

import (
	"io"

	"ai-tutor-be/internal/dto"
	"ai-tutor-be/internal/pkg/serverutils"
	"ai-tutor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IContentController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	UploadPDF(ctx *fiber.Ctx) error
	Courses(ctx *fiber.Ctx) error
	Graph(ctx *fiber.Ctx) error
}

type contentController struct {
	service        service.IContentService
	maxUploadBytes int64
}

func NewContentController(service service.IContentService, maxUploadBytes int) IContentController {
	return &contentController{service: service, maxUploadBytes: int64(maxUploadBytes)}
}

func (c *contentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/content/v1")
	h.Post("", c.Ingest)
	h.Post("/pdf", c.UploadPDF)
	h.Get("/courses", c.Courses)
	h.Get("/graph", c.Graph)
}

func (c *contentController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ingest(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Content queued for indexing", res))
}

func (c *contentController) UploadPDF(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing file")
	}
	if c.maxUploadBytes > 0 && fileHeader.Size > c.maxUploadBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "File too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := c.service.IngestPDF(ctx.UserContext(), fileHeader.Filename, data, ctx.FormValue("course"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("PDF uploaded", res))
}

func (c *contentController) Courses(ctx *fiber.Ctx) error {
	res, err := c.service.Courses(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get courses", res))
}

func (c *contentController) Graph(ctx *fiber.Ctx) error {
	res, err := c.service.Graph(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get knowledge graph", res))
}
