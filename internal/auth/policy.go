package auth

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"
)

//go:embed access-policy.yaml
var defaultPolicy []byte

// Access is the outcome of an access rule.
type Access string

const (
	AccessPermit        Access = "permit"
	AccessAuthenticated Access = "authenticated"
)

// Rule grants access to requests matching any of its patterns. An empty Methods list
// matches every method.
type Rule struct {
	Name     string   `yaml:"name"`
	Methods  []string `yaml:"methods"`
	Patterns []string `yaml:"patterns"`
	Access   Access   `yaml:"access"`
}

// defaultRule applies when nothing else matches.
var defaultRule = Rule{Name: "default", Access: AccessAuthenticated}

// Policy is an ordered, immutable rule table.
type Policy struct {
	rules []Rule
}

type policyFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadPolicy reads the rule table at file, or the built-in table when file is empty.
func LoadPolicy(file string) (*Policy, error) {
	data := defaultPolicy
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read access policy: %w", err)
		}
		data = raw
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes and validates a YAML rule table.
func ParsePolicy(data []byte) (*Policy, error) {
	var doc policyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode access policy: %w", err)
	}
	return NewPolicy(doc.Rules...)
}

// NewPolicy validates rules and keeps them in order.
func NewPolicy(rules ...Rule) (*Policy, error) {
	compiled := make([]Rule, 0, len(rules))
	for i, rule := range rules {
		if rule.Name == "" {
			rule.Name = fmt.Sprintf("rule-%d", i+1)
		}
		switch rule.Access {
		case AccessPermit, AccessAuthenticated:
		default:
			return nil, fmt.Errorf("access rule %q: unknown access %q", rule.Name, rule.Access)
		}
		if len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("access rule %q: at least one pattern is required", rule.Name)
		}
		for _, pattern := range rule.Patterns {
			if !strings.HasPrefix(pattern, "/") || !doublestar.ValidatePattern(pattern) {
				return nil, fmt.Errorf("access rule %q: invalid pattern %q", rule.Name, pattern)
			}
		}
		methods := make([]string, len(rule.Methods))
		for j, method := range rule.Methods {
			methods[j] = strings.ToUpper(strings.TrimSpace(method))
		}
		rule.Methods = methods
		compiled = append(compiled, rule)
	}
	return &Policy{rules: compiled}, nil
}

// Match returns the first rule matching method and requestPath, or the default rule.
func (p *Policy) Match(method, requestPath string) Rule {
	target, ok := normalizePath(requestPath)
	if !ok {
		return defaultRule
	}
	for _, rule := range p.rules {
		if !rule.matchesMethod(method) {
			continue
		}
		for _, pattern := range rule.Patterns {
			if ok, _ := doublestar.Match(pattern, target); ok {
				return rule
			}
		}
	}
	return defaultRule
}

// Handler enforces the policy, handing anonymous callers of protected routes to entry.
func (p *Policy) Handler(entry *EntryPoint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p.Match(c.Method(), c.Path()).Access == AccessPermit {
			return c.Next()
		}
		if _, ok := PrincipalFromContext(c); ok {
			return c.Next()
		}
		return entry.Commence(c)
	}
}

func (r Rule) matchesMethod(method string) bool {
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// normalizePath collapses duplicate and trailing slashes. Paths with dot segments are
// reported as not normalizable and only ever match the default rule.
func normalizePath(p string) (string, bool) {
	for _, segment := range strings.Split(p, "/") {
		if segment == "." || segment == ".." {
			return "", false
		}
	}
	return path.Clean("/" + p), true
}
