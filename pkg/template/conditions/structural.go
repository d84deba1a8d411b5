package conditions

import (
	"strconv"
	"strings"

	"stencil-hq/atrium/pkg/template"
)

// registerStructural installs the predicates comparing the current view
// against the condition value. Toggle kinds (entire site, front page, ...)
// ignore the value entirely; any operand is accepted as a sentinel.
func registerStructural(r *Registry) {
	r.Register(template.KindEntireSite, func(_ string, _ *template.RequestContext) bool {
		return true
	})
	r.Register(template.KindFrontPage, func(_ string, rctx *template.RequestContext) bool {
		return rctx.IsFrontPage
	})
	r.Register(template.KindResourceType, matchResourceType)
	// Identity kinds compare the operand verbatim: an empty operand matches
	// only a view whose identifier is empty, it does not widen to "any".
	// The author kind below is the one kind with empty-as-any semantics.
	r.Register(template.KindPage, func(value string, rctx *template.RequestContext) bool {
		return rctx.IsPage && rctx.ResourceID == value
	})
	r.Register(template.KindSingle, func(value string, rctx *template.RequestContext) bool {
		return rctx.IsSingular && !rctx.IsPage && rctx.ResourceID == value
	})
	r.Register(template.KindResource, func(value string, rctx *template.RequestContext) bool {
		return rctx.IsSingular && rctx.ResourceID == value
	})
	r.Register(template.KindCategory, func(value string, rctx *template.RequestContext) bool {
		if rctx.IsArchive && rctx.ArchiveTaxonomy == "category" && rctx.ArchiveTerm == value {
			return true
		}
		return rctx.IsSingular && rctx.HasTerm("category", value)
	})
	r.Register(template.KindTag, func(value string, rctx *template.RequestContext) bool {
		if rctx.IsArchive && rctx.ArchiveTaxonomy == "tag" && rctx.ArchiveTerm == value {
			return true
		}
		return rctx.IsSingular && rctx.HasTerm("tag", value)
	})
	r.Register(template.KindAuthor, func(value string, rctx *template.RequestContext) bool {
		if !rctx.IsArchive || rctx.ArchiveAuthor == "" {
			return false
		}
		return value == "" || rctx.ArchiveAuthor == value
	})
	r.Register(template.KindRole, func(value string, rctx *template.RequestContext) bool {
		return rctx.HasRole(value)
	})
	r.Register(template.KindDateArchive, matchDateArchive)
	r.Register(template.KindArchive, matchArchive)
	r.Register(template.KindSearch, func(_ string, rctx *template.RequestContext) bool {
		return rctx.IsSearch
	})
	r.Register(template.KindNotFound, func(_ string, rctx *template.RequestContext) bool {
		return rctx.IsNotFound
	})
	r.Register(template.KindAttachment, func(_ string, rctx *template.RequestContext) bool {
		return rctx.IsAttachment
	})
	r.Register(template.KindPrivacyPolicy, func(_ string, rctx *template.RequestContext) bool {
		return rctx.IsPrivacyPolicy
	})
	// Verbatim comparison again: an empty operand never names a taxonomy.
	r.Register(template.KindTaxonomy, func(value string, rctx *template.RequestContext) bool {
		return rctx.IsArchive && rctx.ArchiveTaxonomy == value
	})
	r.Register(template.KindResourceTypeArchive, func(value string, rctx *template.RequestContext) bool {
		return rctx.IsArchive && rctx.ArchiveResourceType == value
	})
	r.Register(template.KindParent, func(value string, rctx *template.RequestContext) bool {
		return rctx.IsPage && rctx.ParentID != "" && rctx.ParentID == value
	})
	r.Register(template.KindLayout, matchLayout)
	r.Register(template.KindFormat, matchFormat)
	r.Register(template.KindPublicationStatus, func(value string, rctx *template.RequestContext) bool {
		return rctx.IsSingular && rctx.PublicationStatus == value
	})
	r.Register(template.KindCommentStatus, func(value string, rctx *template.RequestContext) bool {
		if !rctx.IsSingular {
			return false
		}
		return (rctx.CommentsOpen && value == "open") || (!rctx.CommentsOpen && value == "closed")
	})
	r.Register(template.KindHasThumbnail, func(_ string, rctx *template.RequestContext) bool {
		return rctx.IsSingular && rctx.HasThumbnail
	})
	r.Register(template.KindMinWordCount, func(value string, rctx *template.RequestContext) bool {
		return rctx.IsSingular && rctx.WordCount >= parseThreshold(value)
	})
	r.Register(template.KindMinAgeDays, matchMinAgeDays)
}

// matchResourceType matches both singular views of the type and archives of
// the type. The "product" type routes through the storefront signal when the
// context carries one, since product pages on commerce hosts resolve through
// the storefront rather than the generic singular path.
func matchResourceType(value string, rctx *template.RequestContext) bool {
	if value == "product" && rctx.IsProduct {
		return true
	}
	if rctx.IsSingular && rctx.ResourceType == value {
		return true
	}
	return rctx.IsArchive && rctx.ArchiveResourceType == value
}

func matchDateArchive(value string, rctx *template.RequestContext) bool {
	if rctx.DateArchive == "" {
		return false
	}
	switch value {
	case "year", "month", "day":
		return rctx.DateArchive == value
	default:
		// Any date archive.
		return true
	}
}

func matchArchive(value string, rctx *template.RequestContext) bool {
	if !rctx.IsArchive {
		return false
	}
	switch value {
	case "category", "tag":
		return rctx.ArchiveTaxonomy == value
	case "author":
		return rctx.ArchiveAuthor != ""
	case "date":
		return rctx.DateArchive != ""
	default:
		// "all" or no value: any archive.
		return true
	}
}

// matchLayout compares the page's layout slug. The "default" token matches
// pages with no explicit layout assigned.
func matchLayout(value string, rctx *template.RequestContext) bool {
	if !rctx.IsPage {
		return false
	}
	if value == "default" && rctx.LayoutSlug == "" {
		return true
	}
	return rctx.LayoutSlug == value
}

// matchFormat compares the resource format; a resource without an explicit
// format counts as "standard".
func matchFormat(value string, rctx *template.RequestContext) bool {
	if !rctx.IsSingular {
		return false
	}
	format := rctx.Format
	if format == "" {
		format = "standard"
	}
	return format == value
}

func matchMinAgeDays(value string, rctx *template.RequestContext) bool {
	if !rctx.IsSingular || rctx.PublishedAt.IsZero() {
		return false
	}
	days := int(rctx.Timestamp().Sub(rctx.PublishedAt).Hours() / 24)
	return days >= parseThreshold(value)
}

// parseThreshold parses a numeric operand; non-numeric values count as 0,
// so a malformed threshold matches everything at or above zero rather than
// erroring.
func parseThreshold(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}
