// Package conditions implements the predicate library: pure, side-effect-free
// functions mapping a (kind, operand value, request context) triple to a
// boolean.
//
// Predicates are registered in a Registry keyed by condition kind, replacing
// a monolithic switch with a dispatch table that extensions can inspect.
// Every predicate handles a missing or inapplicable context gracefully: an
// author-archive predicate evaluated outside any archive view returns false,
// never an error. An unknown kind likewise evaluates to false (fail-closed);
// a misconfigured template must not break page rendering.
//
// Storefront kinds (shop, cart, product_category, ...) are only registered
// when the registry is built with WithCommerce, mirroring feature detection
// of the commerce extension on the host. Without it they are unknown kinds
// and fail closed.
package conditions
