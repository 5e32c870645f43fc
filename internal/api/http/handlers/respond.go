package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/faya/preorder-api/internal/api/dto"
	"github.com/faya/preorder-api/internal/observability"
	"github.com/faya/preorder-api/pkg/apperrors"
)

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.OK(status, message, data, observability.TraceID(c)))
}

// bind decodes the JSON body into req and validates it.
func bind[T dto.Validator](c *fiber.Ctx, req T) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewTypeMismatch("body", "JSON object", err)
	}
	return req.Validate()
}

func uuidParam(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewTypeMismatch(name, "UUID", err)
	}
	return id.String(), nil
}

func optionalUUIDQuery(c *fiber.Ctx, name string) (string, error) {
	raw := c.Query(name)
	if raw == "" {
		return "", nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewTypeMismatch(name, "UUID", err)
	}
	return id.String(), nil
}

// intQuery reads a non-negative integer query parameter, falling back to def when absent.
func intQuery(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewTypeMismatch(name, "non-negative integer", err)
	}
	return v, nil
}

func page(c *fiber.Ctx) (limit, offset int, err error) {
	if limit, err = intQuery(c, "limit", 50); err != nil {
		return 0, 0, err
	}
	if offset, err = intQuery(c, "offset", 0); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
