package conditions

import (
	"log/slog"
	"sort"

	"stencil-hq/atrium/pkg/template"
)

// Predicate evaluates one condition kind against the request context.
// Implementations must be pure and must never panic on malformed values;
// anything unparseable evaluates to false.
type Predicate func(value string, rctx *template.RequestContext) bool

// Registry maps condition kinds to their predicates.
type Registry struct {
	predicates map[template.Kind]Predicate
	logger     *slog.Logger
	commerce   bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for debug-level evaluation logging.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCommerce registers the storefront condition kinds. Call it only when
// the commerce extension reports itself present; otherwise storefront
// conditions stay unknown and fail closed.
func WithCommerce() Option {
	return func(r *Registry) {
		r.commerce = true
	}
}

// NewRegistry builds a registry with the full structural and contextual
// catalogs registered, plus the storefront catalog when commerce is enabled.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		predicates: make(map[template.Kind]Predicate),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	registerStructural(r)
	registerContextual(r)
	if r.commerce {
		registerCommerce(r)
	}
	return r
}

// Register installs a predicate for kind, replacing any existing one.
// Extensions use this to contribute custom kinds.
func (r *Registry) Register(kind template.Kind, p Predicate) {
	if kind == "" || p == nil {
		return
	}
	r.predicates[kind] = p
}

// Known reports whether a predicate is registered for kind.
func (r *Registry) Known(kind template.Kind) bool {
	_, ok := r.predicates[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order, for introspection and
// lint tooling.
func (r *Registry) Kinds() []template.Kind {
	kinds := make([]template.Kind, 0, len(r.predicates))
	for k := range r.predicates {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// CommerceEnabled reports whether storefront kinds were registered.
func (r *Registry) CommerceEnabled() bool {
	return r.commerce
}

// Evaluate runs the predicate for kind against the context. Unknown kinds
// and nil contexts evaluate to false.
func (r *Registry) Evaluate(kind template.Kind, value string, rctx *template.RequestContext) bool {
	p, ok := r.predicates[kind]
	if !ok {
		r.logger.Debug("unknown condition kind", "kind", kind)
		return false
	}
	if rctx == nil {
		return false
	}
	matched := p(value, rctx)
	r.logger.Debug("condition evaluated",
		"kind", kind,
		"value", value,
		"matched", matched,
	)
	return matched
}
