package engine

import (
	"testing"

	"stencil-hq/atrium/pkg/template"
	"stencil-hq/atrium/pkg/template/conditions"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(conditions.NewRegistry(conditions.WithCommerce()), nil)
}

func TestEvaluateConditionOperators(t *testing.T) {
	e := newTestEvaluator()
	front := &template.RequestContext{IsFrontPage: true}
	inner := &template.RequestContext{}

	tests := []struct {
		name string
		cond template.Condition
		rctx *template.RequestContext
		want bool
	}{
		{
			name: "include passes predicate through",
			cond: template.Condition{Kind: template.KindFrontPage, Operator: template.OperatorInclude},
			rctx: front,
			want: true,
		},
		{
			name: "include non-matching",
			cond: template.Condition{Kind: template.KindFrontPage, Operator: template.OperatorInclude},
			rctx: inner,
			want: false,
		},
		{
			name: "exclude inverts a match",
			cond: template.Condition{Kind: template.KindFrontPage, Operator: template.OperatorExclude},
			rctx: front,
			want: false,
		},
		{
			name: "exclude inverts a non-match",
			cond: template.Condition{Kind: template.KindFrontPage, Operator: template.OperatorExclude},
			rctx: inner,
			want: true,
		},
		{
			name: "exclude entire site never matches",
			cond: template.Condition{Kind: template.KindEntireSite, Operator: template.OperatorExclude},
			rctx: front,
			want: false,
		},
		{
			name: "unknown kind fails closed",
			cond: template.Condition{Kind: "made_up", Operator: template.OperatorInclude},
			rctx: front,
			want: false,
		},
		{
			name: "exclude of unknown kind matches everywhere",
			cond: template.Condition{Kind: "made_up", Operator: template.OperatorExclude},
			rctx: inner,
			want: true,
		},
		{
			name: "invalid condition contributes false even with exclude",
			cond: template.Condition{Kind: "", Operator: template.OperatorExclude},
			rctx: inner,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.EvaluateCondition(tt.cond, tt.rctx); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesORAggregation(t *testing.T) {
	e := newTestEvaluator()
	rctx := &template.RequestContext{IsSearch: true}

	conds := []template.Condition{
		{Kind: template.KindFrontPage, Operator: template.OperatorInclude},
		{Kind: template.KindSearch, Operator: template.OperatorInclude},
	}
	if !e.Matches(conds, rctx) {
		t.Error("any matching condition should satisfy the list")
	}

	noHit := []template.Condition{
		{Kind: template.KindFrontPage, Operator: template.OperatorInclude},
		{Kind: template.KindNotFound, Operator: template.OperatorInclude},
	}
	if e.Matches(noHit, rctx) {
		t.Error("list with no matching condition should not match")
	}
}

func TestMatchesEmptyListNeverMatches(t *testing.T) {
	e := newTestEvaluator()
	rctx := &template.RequestContext{IsFrontPage: true}

	if e.Matches(nil, rctx) {
		t.Error("nil condition list must never match")
	}
	if e.Matches([]template.Condition{}, rctx) {
		t.Error("empty condition list must never match")
	}
}

func TestMatchesSkipsInvalidConditions(t *testing.T) {
	e := newTestEvaluator()
	rctx := &template.RequestContext{}

	// The invalid condition is skipped before operator adjustment, so the
	// exclude operator cannot turn it into a universal match.
	conds := []template.Condition{
		{Kind: "", Operator: template.OperatorExclude},
	}
	if e.Matches(conds, rctx) {
		t.Error("a list of only invalid conditions must not match")
	}

	mixed := []template.Condition{
		{Kind: ""},
		{Kind: template.KindEntireSite, Operator: template.OperatorInclude},
	}
	if !e.Matches(mixed, rctx) {
		t.Error("valid conditions after an invalid one should still be evaluated")
	}
}

func TestMatchesShortCircuits(t *testing.T) {
	e := newTestEvaluator()
	rctx := &template.RequestContext{IsFrontPage: true}

	obs := &countingObserver{}
	e.observer = obs

	conds := []template.Condition{
		{Kind: template.KindFrontPage, Operator: template.OperatorInclude},
		{Kind: template.KindSearch, Operator: template.OperatorInclude},
	}
	if !e.Matches(conds, rctx) {
		t.Fatal("expected match")
	}
	if obs.evaluations != 1 {
		t.Errorf("evaluations = %d, want 1 (short circuit on first hit)", obs.evaluations)
	}
}
