package dto

import "time"

// Envelope is the single JSON shape of every API response.
// Data is only set on success; Errors only on validation failures.
type Envelope struct {
	Success    bool         `json:"success"`
	StatusCode int          `json:"statusCode"`
	Message    string       `json:"message,omitempty"`
	Data       any          `json:"data,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
	Timestamp  string       `json:"timestamp"`
	TraceID    string       `json:"traceId,omitempty"`
}

// FieldError describes one rejected input field. RejectedValue is left nil for
// sensitive fields so it is never serialised.
type FieldError struct {
	Field         string `json:"field"`
	RejectedValue any    `json:"rejectedValue,omitempty"`
	Message       string `json:"message"`
}

// OK builds a success envelope.
func OK(status int, message string, data any, traceID string) Envelope {
	return Envelope{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
		Timestamp:  timestamp(),
		TraceID:    traceID,
	}
}

// Fail builds an error envelope without field details.
func Fail(status int, message, traceID string) Envelope {
	return Envelope{
		StatusCode: status,
		Message:    message,
		Timestamp:  timestamp(),
		TraceID:    traceID,
	}
}

// Invalid builds a validation error envelope.
func Invalid(status int, message string, errors []FieldError, traceID string) Envelope {
	env := Fail(status, message, traceID)
	env.Errors = errors
	return env
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
