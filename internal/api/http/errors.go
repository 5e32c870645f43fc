package http

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/api/dto"
	"github.com/faya/preorder-api/internal/observability"
	"github.com/faya/preorder-api/pkg/apperrors"
)

// Client facing messages. Details of storage conflicts and unexpected failures are
// only logged.
const (
	MessageValidation      = "Request validation failed. Check the 'errors' field for details."
	MessageForbidden       = "You do not have permission to perform this action."
	MessageAuthRequired    = "Authentication required."
	MessageStorageConflict = "The request could not be completed due to a data conflict. This resource may already exist."
	MessageUnexpected      = "An unexpected error occurred. Please try again or contact support."
)

// Translator turns every error a handler returns into the response envelope.
type Translator struct {
	logger   *zap.Logger
	metrics  *observability.Metrics
	redactor *Redactor
}

// NewTranslator builds a translator. extraSensitive extends the redacted field set.
func NewTranslator(logger *zap.Logger, metrics *observability.Metrics, extraSensitive []string) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{
		logger:   logger,
		metrics:  metrics,
		redactor: NewRedactor(extraSensitive...),
	}
}

// Middleware recovers panics and translates errors returned further down the chain.
func (t *Translator) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				observability.LoggerFor(t.logger, c).Error("panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewUnexpected(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				err = t.Write(c, err)
			}
		}()
		return c.Next()
	}
}

// ErrorHandler is installed as fiber's fallback for errors escaping the middleware.
func (t *Translator) ErrorHandler(c *fiber.Ctx, err error) error {
	return t.Write(c, err)
}

// Write classifies err, logs it and writes the matching envelope.
func (t *Translator) Write(c *fiber.Ctx, err error) error {
	appErr := t.classify(c, err)
	t.metrics.RecordError(appErr.Kind.String())

	status, env := t.envelope(appErr, observability.TraceID(c))
	t.log(observability.LoggerFor(t.logger, c), c, appErr)

	return c.Status(status).JSON(env)
}

func (t *Translator) classify(c *fiber.Ctx, err error) *apperrors.Error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return apperrors.NewNotFound("Route", "path", c.Path()).(*apperrors.Error)
		case fiber.StatusMethodNotAllowed:
			return apperrors.NewNotFound("Route", "method", c.Method()).(*apperrors.Error)
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge,
			fiber.StatusUnsupportedMediaType, fiber.StatusUnprocessableEntity:
			return apperrors.NewTypeMismatch("body", "JSON object", err).(*apperrors.Error)
		default:
			return apperrors.NewUnexpected(err).(*apperrors.Error)
		}
	}
	return apperrors.Classify(err)
}

func (t *Translator) envelope(e *apperrors.Error, traceID string) (int, dto.Envelope) {
	switch e.Kind {
	case apperrors.KindValidation:
		return fiber.StatusBadRequest, dto.Invalid(fiber.StatusBadRequest, MessageValidation, t.fieldErrors(e.Fields), traceID)
	case apperrors.KindTypeMismatch:
		msg := fmt.Sprintf("Parameter '%s' should be of type '%s'", e.Param, e.Expected)
		return fiber.StatusBadRequest, dto.Fail(fiber.StatusBadRequest, msg, traceID)
	case apperrors.KindForbidden:
		return fiber.StatusForbidden, dto.Fail(fiber.StatusForbidden, MessageForbidden, traceID)
	case apperrors.KindAuthRequired:
		return fiber.StatusUnauthorized, dto.Fail(fiber.StatusUnauthorized, MessageAuthRequired, traceID)
	case apperrors.KindNotFound:
		return fiber.StatusNotFound, dto.Fail(fiber.StatusNotFound, e.Message, traceID)
	case apperrors.KindConflict:
		return fiber.StatusConflict, dto.Fail(fiber.StatusConflict, e.Message, traceID)
	case apperrors.KindStorageConflict:
		return fiber.StatusConflict, dto.Fail(fiber.StatusConflict, MessageStorageConflict, traceID)
	case apperrors.KindUnexpected:
		return fiber.StatusInternalServerError, dto.Fail(fiber.StatusInternalServerError, MessageUnexpected, traceID)
	default:
		return fiber.StatusInternalServerError, dto.Fail(fiber.StatusInternalServerError, MessageUnexpected, traceID)
	}
}

func (t *Translator) fieldErrors(fields []apperrors.FieldViolation) []dto.FieldError {
	out := make([]dto.FieldError, 0, len(fields))
	for _, f := range fields {
		fe := dto.FieldError{Field: f.Field, Message: f.Message}
		if !t.redactor.Sensitive(f.Field) {
			fe.RejectedValue = f.RejectedValue
		}
		out = append(out, fe)
	}
	return out
}

func (t *Translator) log(log *zap.Logger, c *fiber.Ctx, e *apperrors.Error) {
	fields := []zap.Field{
		zap.String("kind", e.Kind.String()),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	}
	switch e.Kind {
	case apperrors.KindValidation:
		log.Debug("validation failed", append(fields, zap.Int("field_errors", len(e.Fields)))...)
	case apperrors.KindTypeMismatch, apperrors.KindNotFound, apperrors.KindConflict:
		log.Debug("request rejected", append(fields, zap.String("detail", e.Message))...)
	case apperrors.KindForbidden, apperrors.KindAuthRequired:
		log.Warn("access denied", append(fields, zap.String("reason", e.Message))...)
	default:
		cause := errors.Unwrap(e)
		if cause == nil {
			cause = e
		}
		log.Error("request failed", append(fields,
			zap.String("error_type", fmt.Sprintf("%T", cause)),
			zap.Error(cause))...)
	}
}
