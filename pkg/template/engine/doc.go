// Package engine implements template resolution: deciding, per request,
// which template (if any) applies and how it composes into the page.
//
// # Architecture
//
// The engine uses a four-layer design:
//
//  1. Evaluator - applies the include/exclude operator to each predicate
//     result and OR-aggregates a template's condition list
//  2. Classifier - assigns a composition category (header, footer,
//     full_page, content) from the explicit field, the title signal, or the
//     condition kinds
//  3. Resolver - iterates active templates in repository order and returns
//     the first match
//  4. Composition Router - maps the decision to a rendering strategy for
//     the host layer
//
// # Resolution Flow
//
//	RequestContext
//	       ↓
//	Resolver (list active templates from the repository)
//	       ↓
//	For each template in repository order:
//	  Any condition match (operator-adjusted, OR)?
//	    Yes → classify → return Decision (first match wins)
//	    No  → next template
//	       ↓
//	Route(Decision) → RenderPlan for the rendering layer
//
// # Fail-Closed Behavior
//
// The resolution path never surfaces errors to the rendering layer. Unknown
// condition kinds, malformed operands, invalid conditions, an empty or
// unavailable repository, and re-entrant resolution attempts all degrade to
// "no match"; the worst case is the host's default rendering, which is
// indistinguishable from an ordinary unmatched request.
//
// # Re-Entrancy
//
// Certain predicates can trigger a fresh resolution through host
// collaborators (a storefront product lookup, for instance). The resolver
// marks the request context.Context for the duration of a pass; a nested
// call observing the mark returns no match immediately instead of
// recursing. The guard travels with the call, so concurrent requests do not
// interfere with each other.
package engine
