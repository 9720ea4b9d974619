// Package validate runs consistency rules over a finalized invoice
// record. Rules never mutate field values; failures are reported as
// warnings on the record so reviewers can triage them.
package validate

import (
	"invosplit/internal/schema"
)

// Result is the outcome of one rule check against one field.
type Result struct {
	Passed        bool   `json:"passed"`
	FieldPath     string `json:"field_path"`
	ExpectedValue string `json:"expected_value"`
	ActualValue   string `json:"actual_value"`
	Message       string `json:"message"`
}

// Rule is a single consistency check over an invoice record.
type Rule interface {
	RuleKey() string
	RuleName() string
	Check(r *schema.InvoiceRecord) []Result
}

// Registry maps rule keys to Rule implementations.
type Registry struct {
	rules map[string]Rule
	order []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule to the registry. Registration order is preserved
// so warning output is stable.
func (reg *Registry) Register(rule Rule) {
	if _, ok := reg.rules[rule.RuleKey()]; !ok {
		reg.order = append(reg.order, rule.RuleKey())
	}
	reg.rules[rule.RuleKey()] = rule
}

// Get returns the rule for a given key, or nil if not found.
func (reg *Registry) Get(key string) Rule {
	return reg.rules[key]
}

// All returns all registered rules in registration order.
func (reg *Registry) All() []Rule {
	out := make([]Rule, 0, len(reg.order))
	for _, key := range reg.order {
		out = append(out, reg.rules[key])
	}
	return out
}
