// Package template defines the core data model for condition-driven site
// templates: the Template record itself, the typed Condition predicates
// attached to it, the read-only RequestContext the predicates are evaluated
// against, and the Decision produced by a resolution pass.
//
// A Template is a reusable content unit (header, footer, content block, or a
// full page) authored by a site operator. Each template carries an ordered
// list of Conditions deciding, per incoming request, whether the template
// applies. Conditions aggregate with OR semantics: any matching condition
// activates the template. A template with no conditions never matches.
//
// The types in this package are plain data. Evaluation logic lives in
// stencil-hq/atrium/pkg/template/conditions (the predicate library) and
// stencil-hq/atrium/pkg/template/engine (evaluator, classifier, resolver,
// composition router).
package template
