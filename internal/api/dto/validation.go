package dto

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/faya/preorder-api/pkg/apperrors"
)

// Validator is implemented by request payloads.
type Validator interface {
	Validate() error
}

// violations accumulates field errors in declaration order.
type violations []apperrors.FieldViolation

func (v *violations) add(field string, value any, message string) {
	*v = append(*v, apperrors.FieldViolation{Field: field, RejectedValue: value, Message: message})
}

// err returns nil when nothing was rejected.
func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return apperrors.NewValidation(v...)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@")+1:], ".")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
