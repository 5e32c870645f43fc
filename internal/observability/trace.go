package observability

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

// DefaultTraceHeader carries the correlation id in both directions.
const DefaultTraceHeader = "X-Trace-Id"

// maxInboundTraceID bounds client supplied ids; longer values are replaced.
const maxInboundTraceID = 128

const traceLocalsKey = "trace_id"

type traceContextKey struct{}

// TraceMiddleware assigns every request a trace id, echoes it on the response and
// starts a fresh request context. Both are cleared when the request unwinds.
func TraceMiddleware(header string) fiber.Handler {
	if header == "" {
		header = DefaultTraceHeader
	}
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(header))
		if id == "" || len(id) > maxInboundTraceID {
			id = uuid.NewString()
		} else {
			id = utils.CopyString(id)
		}

		c.Locals(traceLocalsKey, id)
		c.SetUserContext(WithTraceID(context.Background(), id))
		c.Set(header, id)

		defer func() {
			c.Locals(traceLocalsKey, nil)
			c.SetUserContext(context.Background())
		}()
		return c.Next()
	}
}

// TraceID returns the current request's trace id, or "" outside TraceMiddleware.
func TraceID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(traceLocalsKey).(string); ok {
		return id
	}
	return string(c.Response().Header.Peek(DefaultTraceHeader))
}

// WithTraceID stores id on ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceContextKey{}, id)
}

// TraceIDFromContext returns the trace id stored on ctx.
func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceContextKey{}).(string)
	return id
}
