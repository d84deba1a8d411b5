package conditions

import "stencil-hq/atrium/pkg/template"

// registerCommerce installs the storefront predicates. These are only
// registered when the commerce extension is present; a registry built
// without WithCommerce treats every storefront kind as unknown.
func registerCommerce(r *Registry) {
	r.Register(template.KindShop, func(_ string, rctx *template.RequestContext) bool {
		return rctx.IsShop
	})
	r.Register(template.KindProductCategory, func(value string, rctx *template.RequestContext) bool {
		if rctx.IsArchive && rctx.ArchiveTaxonomy == "product_category" && rctx.ArchiveTerm == value {
			return true
		}
		return rctx.IsProduct && rctx.HasTerm("product_category", value)
	})
	r.Register(template.KindProductTag, func(value string, rctx *template.RequestContext) bool {
		if rctx.IsArchive && rctx.ArchiveTaxonomy == "product_tag" && rctx.ArchiveTerm == value {
			return true
		}
		return rctx.IsProduct && rctx.HasTerm("product_tag", value)
	})
	r.Register(template.KindCart, func(_ string, rctx *template.RequestContext) bool {
		return rctx.IsCart
	})
	r.Register(template.KindCheckout, func(_ string, rctx *template.RequestContext) bool {
		return rctx.IsCheckout
	})
	r.Register(template.KindAccount, func(_ string, rctx *template.RequestContext) bool {
		return rctx.IsAccount
	})
	r.Register(template.KindCustomerStatus, matchCustomerStatus)
}

func matchCustomerStatus(value string, rctx *template.RequestContext) bool {
	switch value {
	case "guest":
		return !rctx.SignedIn
	case "customer":
		return rctx.SignedIn
	case "returning_customer":
		return rctx.SignedIn && rctx.CustomerOrderCount > 0
	default:
		return false
	}
}
