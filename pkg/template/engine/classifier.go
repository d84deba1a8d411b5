package engine

import (
	"strings"

	"stencil-hq/atrium/pkg/template"
)

// fullPageKinds are the "whole view" condition kinds: a template keyed to
// any of them replaces the entire document rather than just the body.
var fullPageKinds = map[template.Kind]struct{}{
	template.KindEntireSite:      {},
	template.KindFrontPage:       {},
	template.KindNotFound:        {},
	template.KindSearch:          {},
	template.KindArchive:         {},
	template.KindCategory:        {},
	template.KindTag:             {},
	template.KindAuthor:          {},
	template.KindDateArchive:     {},
	template.KindShop:            {},
	template.KindProductCategory: {},
}

// Classify assigns a composition category to a template.
//
// Signals are checked in precedence order:
//
//  1. The explicit Category field, when the author set one.
//  2. Title substring: a title containing "header" or "footer"
//     (case-insensitive) classifies as that slot.
//  3. Condition kinds, scanned in list order: a header/footer slot marker
//     yields that slot; any whole-view kind yields full_page.
//  4. Default: content.
//
// The title and condition signals are a heuristic, not a grammar; an author
// can produce a mismatch, in which case the earlier signal wins. Classify is
// pure: the same title and conditions always yield the same category.
func Classify(t *template.Template) template.Category {
	if t == nil {
		return template.CategoryContent
	}
	if t.Category.Valid() {
		return t.Category
	}

	title := strings.ToLower(t.Title)
	if strings.Contains(title, "header") {
		return template.CategoryHeader
	}
	if strings.Contains(title, "footer") {
		return template.CategoryFooter
	}

	for _, c := range t.Conditions {
		switch c.Kind {
		case template.KindHeaderSlot:
			return template.CategoryHeader
		case template.KindFooterSlot:
			return template.CategoryFooter
		}
		if _, ok := fullPageKinds[c.Kind]; ok {
			return template.CategoryFullPage
		}
	}

	return template.CategoryContent
}
