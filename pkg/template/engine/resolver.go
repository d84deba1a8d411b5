package engine

import (
	"context"
	"log/slog"
	"time"

	"stencil-hq/atrium/pkg/template"
)

// Repository provides ordered template records to the resolver. Order is
// authoring order, newest first by convention, and doubles as selection
// priority: the resolver tries templates in exactly the order returned.
type Repository interface {
	// ListActive returns the templates with active status, in repository
	// order, conditions included.
	ListActive(ctx context.Context) ([]*template.Template, error)

	// Get returns the template with the given id, or ErrTemplateNotFound.
	Get(ctx context.Context, id template.ID) (*template.Template, error)
}

// Observer receives evaluation events. The telemetry layer implements it;
// a nil observer disables instrumentation.
type Observer interface {
	// ConditionEvaluated reports one predicate evaluation (before operator
	// adjustment).
	ConditionEvaluated(kind template.Kind, matched bool)

	// Resolved reports the outcome of one resolution pass.
	Resolved(d template.Decision, elapsed time.Duration)
}

// Resolver selects at most one applicable template per request:
// first-match-wins over the repository order of active templates.
//
// A Resolver is safe for concurrent use; the re-entrancy guard is carried
// on the context.Context of each call, not on the Resolver itself, so
// parallel requests never observe each other's in-progress state.
type Resolver struct {
	repo      Repository
	evaluator *Evaluator
	config    *Config
	logger    *slog.Logger
	observer  Observer
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver's logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConfig sets the resolver configuration.
func WithConfig(cfg *Config) ResolverOption {
	return func(r *Resolver) {
		if cfg != nil {
			r.config = cfg
		}
	}
}

// WithObserver sets the evaluation observer.
func WithObserver(obs Observer) ResolverOption {
	return func(r *Resolver) {
		r.observer = obs
		r.evaluator.observer = obs
	}
}

// NewResolver creates a resolver over the repository and evaluator.
func NewResolver(repo Repository, evaluator *Evaluator, opts ...ResolverOption) *Resolver {
	if evaluator == nil {
		evaluator = NewEvaluator(nil, nil)
	}
	r := &Resolver{
		repo:      repo,
		evaluator: evaluator,
		config:    DefaultConfig(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// guardKey marks a context as having a resolution pass in flight.
type guardKey struct{}

func resolving(ctx context.Context) bool {
	v, _ := ctx.Value(guardKey{}).(bool)
	return v
}

// Resolve returns the decision for the request: the first active template
// in repository order whose conditions match, classified, or no match.
//
// Resolve never returns an error; repository failures, invalid conditions
// and re-entrant calls all degrade to no match, leaving the host's default
// rendering in place.
func (r *Resolver) Resolve(ctx context.Context, rctx *template.RequestContext) template.Decision {
	return r.resolve(ctx, rctx, "")
}

// ResolveForLocation resolves for a single layout slot: only templates
// classified into the requested location (header or footer) are considered
// before their conditions are tested. Slot resolution is independent of the
// main body pass; one request can use a content template for the body and
// separately resolved header and footer templates.
func (r *Resolver) ResolveForLocation(ctx context.Context, rctx *template.RequestContext, location template.Category) template.ID {
	if location != template.CategoryHeader && location != template.CategoryFooter {
		return ""
	}
	return r.resolve(ctx, rctx, location).TemplateID
}

func (r *Resolver) resolve(ctx context.Context, rctx *template.RequestContext, location template.Category) template.Decision {
	if ctx == nil {
		ctx = context.Background()
	}
	if resolving(ctx) {
		// Nested resolution from inside a predicate or repository call.
		// Returning no match here is the safety valve against unbounded
		// recursion, not an error.
		r.logger.Debug("re-entrant resolution attempt, returning no match")
		return template.NoMatch()
	}
	ctx = context.WithValue(ctx, guardKey{}, true)

	start := time.Now()
	decision := r.firstMatch(ctx, rctx, location)
	if r.observer != nil {
		r.observer.Resolved(decision, time.Since(start))
	}
	return decision
}

func (r *Resolver) firstMatch(ctx context.Context, rctx *template.RequestContext, location template.Category) template.Decision {
	templates, err := r.repo.ListActive(ctx)
	if err != nil {
		r.logger.Warn("template repository unavailable, resolving to no match", "error", err)
		return template.NoMatch()
	}
	if len(templates) > r.config.MaxTemplates {
		r.logger.Warn("active template count exceeds cap, truncating",
			"count", len(templates),
			"max", r.config.MaxTemplates,
		)
		templates = templates[:r.config.MaxTemplates]
	}

	for _, t := range templates {
		if !t.Active() {
			continue
		}
		category := Classify(t)
		if location != "" && category != location {
			continue
		}
		conds := t.Conditions
		if len(conds) > r.config.MaxConditionsPerTemplate {
			conds = conds[:r.config.MaxConditionsPerTemplate]
		}
		if r.evaluator.Matches(conds, rctx) {
			r.logger.Debug("template matched",
				"template_id", t.ID,
				"category", category,
			)
			return template.Decision{TemplateID: t.ID, Category: category}
		}
	}
	return template.NoMatch()
}

// Classify fetches the template from the repository and classifies it.
// Used by list and admin surfaces to display the detected type.
func (r *Resolver) Classify(ctx context.Context, id template.ID) (template.Category, error) {
	t, err := r.repo.Get(ctx, id)
	if err != nil {
		return template.CategoryNone, &RepositoryError{Op: "get", ID: id, Cause: err}
	}
	return Classify(t), nil
}
