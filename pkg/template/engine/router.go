package engine

import "stencil-hq/atrium/pkg/template"

// Strategy is the delivery strategy the rendering layer should apply for a
// resolved template.
type Strategy string

const (
	// StrategyReplaceDocument replaces the entire document with the
	// template body; the host layout, header and footer emission included,
	// is bypassed.
	StrategyReplaceDocument Strategy = "replace_document"

	// StrategyReplaceContent substitutes only the primary body content
	// placeholder. Surrounding layout renders normally, which means header
	// and footer slot resolution still runs independently and may inject
	// other templates.
	StrategyReplaceContent Strategy = "replace_content"

	// StrategyInjectHeader places the template body into the header slot
	// in place of the host's default slot content.
	StrategyInjectHeader Strategy = "inject_header"

	// StrategyInjectFooter places the template body into the footer slot.
	StrategyInjectFooter Strategy = "inject_footer"

	// StrategyPassThrough leaves rendering entirely to the host.
	StrategyPassThrough Strategy = "pass_through"
)

// RenderPlan tells the rendering layer what to do with a resolution
// decision.
type RenderPlan struct {
	Strategy   Strategy    `json:"strategy"`
	TemplateID template.ID `json:"template_id,omitempty"`

	// BodyClasses are marker classes the rendering layer attaches to the
	// document body when a template applies, so themes and scripts can
	// react to the override.
	BodyClasses []string `json:"body_classes,omitempty"`
}

// Route maps a resolution decision to its delivery strategy. Pure and
// total: every category, including none, yields a plan.
func Route(d template.Decision) RenderPlan {
	if !d.Matched() {
		return RenderPlan{Strategy: StrategyPassThrough}
	}

	plan := RenderPlan{
		TemplateID: d.TemplateID,
		BodyClasses: []string{
			"tpl-custom-" + string(d.Category),
			"tpl-template-" + string(d.TemplateID),
		},
	}
	switch d.Category {
	case template.CategoryFullPage:
		plan.Strategy = StrategyReplaceDocument
	case template.CategoryHeader:
		plan.Strategy = StrategyInjectHeader
	case template.CategoryFooter:
		plan.Strategy = StrategyInjectFooter
	case template.CategoryContent:
		plan.Strategy = StrategyReplaceContent
	default:
		return RenderPlan{Strategy: StrategyPassThrough}
	}
	return plan
}
