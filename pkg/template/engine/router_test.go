package engine

import (
	"testing"

	"stencil-hq/atrium/pkg/template"
)

func TestRouteStrategies(t *testing.T) {
	tests := []struct {
		name     string
		decision template.Decision
		want     Strategy
	}{
		{
			name:     "no match passes through",
			decision: template.NoMatch(),
			want:     StrategyPassThrough,
		},
		{
			name:     "full page replaces document",
			decision: template.Decision{TemplateID: "tpl-1", Category: template.CategoryFullPage},
			want:     StrategyReplaceDocument,
		},
		{
			name:     "content replaces content",
			decision: template.Decision{TemplateID: "tpl-2", Category: template.CategoryContent},
			want:     StrategyReplaceContent,
		},
		{
			name:     "header injects header",
			decision: template.Decision{TemplateID: "tpl-3", Category: template.CategoryHeader},
			want:     StrategyInjectHeader,
		},
		{
			name:     "footer injects footer",
			decision: template.Decision{TemplateID: "tpl-4", Category: template.CategoryFooter},
			want:     StrategyInjectFooter,
		},
		{
			name:     "unknown category passes through",
			decision: template.Decision{TemplateID: "tpl-5", Category: "sidebar"},
			want:     StrategyPassThrough,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Route(tt.decision)
			if plan.Strategy != tt.want {
				t.Errorf("strategy = %q, want %q", plan.Strategy, tt.want)
			}
		})
	}
}

func TestRouteBodyClasses(t *testing.T) {
	plan := Route(template.Decision{TemplateID: "tpl-9", Category: template.CategoryContent})

	if plan.TemplateID != "tpl-9" {
		t.Errorf("plan template id = %q, want tpl-9", plan.TemplateID)
	}
	want := []string{"tpl-custom-content", "tpl-template-tpl-9"}
	if len(plan.BodyClasses) != len(want) {
		t.Fatalf("body classes = %v, want %v", plan.BodyClasses, want)
	}
	for i := range want {
		if plan.BodyClasses[i] != want[i] {
			t.Errorf("body class %d = %q, want %q", i, plan.BodyClasses[i], want[i])
		}
	}
}

func TestRouteNoMatchCarriesNoClasses(t *testing.T) {
	plan := Route(template.NoMatch())
	if plan.TemplateID != "" || len(plan.BodyClasses) != 0 {
		t.Errorf("pass-through plan should be empty, got %+v", plan)
	}
}
