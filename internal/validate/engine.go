package validate

import (
	"log"

	"invosplit/internal/schema"
)

// Engine runs the registered rules over finalized records.
type Engine struct {
	registry *Registry
}

// NewEngine creates an engine over the given registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// DefaultEngine returns an engine with all built-in rules registered.
func DefaultEngine() *Engine {
	reg := NewRegistry()
	for _, r := range MathRules() {
		reg.Register(r)
	}
	for _, r := range LogicalRules() {
		reg.Register(r)
	}
	for _, r := range FormatRules() {
		reg.Register(r)
	}
	return NewEngine(reg)
}

// Apply checks a record against every rule and appends the message of
// each failed check to the record's warnings. It returns all results,
// passed and failed, for callers that want the full report.
func (e *Engine) Apply(r *schema.InvoiceRecord) []Result {
	var all []Result
	failed := 0
	for _, rule := range e.registry.All() {
		for _, res := range rule.Check(r) {
			all = append(all, res)
			if !res.Passed {
				failed++
				r.Warnings = append(r.Warnings, res.Message)
			}
		}
	}
	if failed > 0 {
		log.Printf("validate.Engine: record %s failed %d of %d checks", r.SpanID, failed, len(all))
	}
	return all
}
