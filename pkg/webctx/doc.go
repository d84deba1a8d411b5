// Package webctx derives the visitor half of a template.RequestContext from
// a raw HTTP request: user agent, referrer, query parameters, locale, and
// request time. The structural half (what resource the route resolved to)
// is the host's knowledge; the host fills those fields and calls Enrich to
// complete the context.
package webctx
