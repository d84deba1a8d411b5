package server

import (
	"context"
	"net/http"
	"strings"

	"stencil-hq/atrium/pkg/template"
	"stencil-hq/atrium/pkg/template/engine"
	"stencil-hq/atrium/pkg/webctx"
)

// ContextBuilder maps an HTTP request to the structural request context:
// what resource the route resolves to, whether it is an archive, the
// storefront flags, and so on. Only the host can know this.
type ContextBuilder func(r *http.Request) *template.RequestContext

type planKey struct{}

// RenderMiddleware resolves each request and attaches the resulting
// RenderPlan to the request context for downstream handlers. The plan is
// also surfaced in response headers so a fronting proxy or theme layer can
// act on it without re-resolving.
//
// Header and footer slots are resolved independently of the main decision
// when the main decision is not a full-page replacement, matching the
// composition model: a content template for the body plus separately
// resolved slot templates.
func RenderMiddleware(resolver Resolver, build ContextBuilder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var rctx *template.RequestContext
			if build != nil {
				rctx = build(r)
			}
			if rctx == nil {
				rctx = &template.RequestContext{}
			}
			webctx.Enrich(rctx, r)

			decision := resolver.Resolve(r.Context(), rctx)
			plan := engine.Route(decision)

			w.Header().Set("X-Atrium-Strategy", string(plan.Strategy))
			if plan.TemplateID != "" {
				w.Header().Set("X-Atrium-Template", string(plan.TemplateID))
			}
			if len(plan.BodyClasses) > 0 {
				w.Header().Set("X-Atrium-Body-Classes", strings.Join(plan.BodyClasses, " "))
			}

			if plan.Strategy != engine.StrategyReplaceDocument {
				if id := resolver.ResolveForLocation(r.Context(), rctx, template.CategoryHeader); id != "" {
					w.Header().Set("X-Atrium-Header-Template", string(id))
				}
				if id := resolver.ResolveForLocation(r.Context(), rctx, template.CategoryFooter); id != "" {
					w.Header().Set("X-Atrium-Footer-Template", string(id))
				}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), planKey{}, plan)))
		})
	}
}

// PlanFromContext returns the RenderPlan attached by RenderMiddleware, if
// any.
func PlanFromContext(ctx context.Context) (engine.RenderPlan, bool) {
	plan, ok := ctx.Value(planKey{}).(engine.RenderPlan)
	return plan, ok
}
