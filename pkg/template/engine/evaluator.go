package engine

import (
	"log/slog"

	"stencil-hq/atrium/pkg/template"
	"stencil-hq/atrium/pkg/template/conditions"
)

// Evaluator applies the include/exclude operator to predicate results and
// aggregates a template's condition list.
type Evaluator struct {
	registry *conditions.Registry
	logger   *slog.Logger
	observer Observer
}

// NewEvaluator creates an evaluator over the given predicate registry.
func NewEvaluator(registry *conditions.Registry, logger *slog.Logger) *Evaluator {
	if registry == nil {
		registry = conditions.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		registry: registry,
		logger:   logger,
	}
}

// EvaluateCondition returns the operator-adjusted result for a single
// condition. An invalid condition (empty kind) contributes false regardless
// of operator: it is skipped, not inverted.
func (e *Evaluator) EvaluateCondition(c template.Condition, rctx *template.RequestContext) bool {
	if !c.Valid() {
		return false
	}
	matched := e.registry.Evaluate(c.Kind, c.Value, rctx)
	if e.observer != nil {
		e.observer.ConditionEvaluated(c.Kind, matched)
	}
	if c.Operator == template.OperatorExclude {
		matched = !matched
	}
	return matched
}

// Matches reports whether any condition in the list matches after operator
// adjustment (OR aggregation, short-circuiting on the first hit).
//
// An empty condition list never matches: an unconfigured template must not
// apply to the entire site by accident. Invalid conditions are skipped
// before operator adjustment so an exclude operator cannot turn a skipped
// condition into a universal match.
func (e *Evaluator) Matches(conds []template.Condition, rctx *template.RequestContext) bool {
	for _, c := range conds {
		if !c.Valid() {
			continue
		}
		if e.EvaluateCondition(c, rctx) {
			return true
		}
	}
	return false
}
