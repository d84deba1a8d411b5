package conditions

import (
	"strings"
	"time"

	"stencil-hq/atrium/pkg/template"
)

// registerContextual installs the predicates deriving signals from the
// visitor: device and browser families, auth state, query parameters,
// metadata matches, locale, referrer, and time.
func registerContextual(r *Registry) {
	r.Register(template.KindMetadata, func(value string, rctx *template.RequestContext) bool {
		key, want, ok := splitPair(value)
		if !ok {
			return false
		}
		return rctx.Meta(key) == want
	})
	r.Register(template.KindQueryParam, func(value string, rctx *template.RequestContext) bool {
		key, want, ok := splitPair(value)
		if !ok || rctx.QueryParams == nil {
			return false
		}
		if !rctx.QueryParams.Has(key) {
			return false
		}
		return rctx.QueryParams.Get(key) == want
	})
	r.Register(template.KindDevice, func(value string, rctx *template.RequestContext) bool {
		return matchDevice(value, rctx.UserAgent)
	})
	r.Register(template.KindAuthState, func(value string, rctx *template.RequestContext) bool {
		switch value {
		case "logged_in":
			return rctx.SignedIn
		case "logged_out":
			return !rctx.SignedIn
		default:
			return false
		}
	})
	r.Register(template.KindBrowser, func(value string, rctx *template.RequestContext) bool {
		return matchBrowser(value, rctx.UserAgent)
	})
	r.Register(template.KindOS, func(value string, rctx *template.RequestContext) bool {
		return matchOS(value, rctx.UserAgent)
	})
	r.Register(template.KindLocale, func(value string, rctx *template.RequestContext) bool {
		return rctx.Locale != "" && rctx.Locale == value
	})
	r.Register(template.KindReferrer, func(value string, rctx *template.RequestContext) bool {
		return value != "" && strings.Contains(rctx.Referrer, value)
	})
	r.Register(template.KindTimeAfter, matchTimeAfter)
}

// splitPair parses a "key=value" operand: split on the first '=', trim both
// sides. An operand without '=' is malformed and never matches.
func splitPair(value string) (key, want string, ok bool) {
	idx := strings.Index(value, "=")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(value[:idx]), strings.TrimSpace(value[idx+1:]), true
}

// timeLayouts are the accepted formats for time_after operands, most
// specific first.
var timeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02",
}

// matchTimeAfter reports whether the request time is at or past the operand
// instant. An unparseable operand never matches.
func matchTimeAfter(value string, rctx *template.RequestContext) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, layout := range timeLayouts {
		at, err := time.Parse(layout, value)
		if err == nil {
			return !rctx.Timestamp().Before(at)
		}
	}
	return false
}
