package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// StatusMapper maps domain errors to an HTTP status; ok=false means no match
type StatusMapper func(err error) (status int, ok bool)

// ErrorHandlerMiddleware renders every handler error as a BaseResponse.
// Mappers are tried in order before falling back to 500.
func ErrorHandlerMiddleware(mappers ...StatusMapper) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var verr *ValidationError
		if errors.As(err, &verr) {
			res := ErrorResponse(fiber.StatusBadRequest, "Invalid request")
			res.Errors = verr.Fields
			return ctx.Status(fiber.StatusBadRequest).JSON(res)
		}

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Code, ferr.Message))
		}

		for _, m := range mappers {
			if status, ok := m(err); ok {
				return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
			}
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}
