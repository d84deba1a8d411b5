package webctx

import (
	"net/http"
	"strings"
	"time"

	"stencil-hq/atrium/pkg/template"
)

// Enrich fills the visitor-derived fields of rctx from the HTTP request.
// Each field is filled only when the caller left it unset, so a context
// describing a different request than r (an API payload, say) keeps its
// own visitor signals. A zero Now is set to the current time. Returns rctx
// for chaining.
func Enrich(rctx *template.RequestContext, r *http.Request) *template.RequestContext {
	if rctx == nil || r == nil {
		return rctx
	}
	if rctx.UserAgent == "" {
		rctx.UserAgent = r.UserAgent()
	}
	if rctx.Referrer == "" {
		rctx.Referrer = r.Referer()
	}
	if rctx.QueryParams == nil {
		rctx.QueryParams = r.URL.Query()
	}
	if rctx.Locale == "" {
		rctx.Locale = PrimaryLocale(r.Header.Get("Accept-Language"))
	}
	if rctx.Now.IsZero() {
		rctx.Now = time.Now()
	}
	return rctx
}

// FromRequest builds a context carrying only visitor signals. Hosts that
// resolve routes themselves usually build the structural context first and
// call Enrich instead.
func FromRequest(r *http.Request) *template.RequestContext {
	return Enrich(&template.RequestContext{}, r)
}

// PrimaryLocale extracts the first language tag from an Accept-Language
// header value, normalized to the ll_CC form locale conditions compare
// against ("en-US;q=0.9,..." yields "en_US"). Empty input yields "".
func PrimaryLocale(acceptLanguage string) string {
	first := acceptLanguage
	if idx := strings.IndexByte(first, ','); idx >= 0 {
		first = first[:idx]
	}
	if idx := strings.IndexByte(first, ';'); idx >= 0 {
		first = first[:idx]
	}
	first = strings.TrimSpace(first)
	if first == "" || first == "*" {
		return ""
	}
	parts := strings.SplitN(strings.ReplaceAll(first, "_", "-"), "-", 2)
	locale := strings.ToLower(parts[0])
	if len(parts) == 2 {
		locale += "_" + strings.ToUpper(parts[1])
	}
	return locale
}
