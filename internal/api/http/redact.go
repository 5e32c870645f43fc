package http

import "strings"

// defaultSensitiveFields never have their rejected values echoed in validation errors.
var defaultSensitiveFields = []string{
	"password", "confirmPassword", "currentPassword", "newPassword",
	"token", "secret", "apiKey", "creditCard", "cvv", "ssn",
}

// Redactor decides which field names are sensitive.
type Redactor struct {
	terms []string
}

// NewRedactor builds a redactor over the default set plus extra terms.
func NewRedactor(extra ...string) *Redactor {
	seen := map[string]struct{}{}
	var terms []string
	for _, term := range append(append([]string{}, defaultSensitiveFields...), extra...) {
		n := normalizeField(term)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		terms = append(terms, n)
	}
	return &Redactor{terms: terms}
}

// Sensitive reports whether field contains any sensitive term, ignoring case, dashes
// and underscores. Dot paths are matched as a whole.
func (r *Redactor) Sensitive(field string) bool {
	n := normalizeField(field)
	for _, term := range r.terms {
		if strings.Contains(n, term) {
			return true
		}
	}
	return false
}

func normalizeField(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "").Replace(s)
}
