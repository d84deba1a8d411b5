package template

import "strings"

// NormalizeConditions returns a cleaned copy of conds: conditions with an
// empty kind are dropped, a missing operator defaults to include, and kind
// and value are trimmed of surrounding whitespace. Stores run this on every
// save so invalid conditions never reach persistence.
func NormalizeConditions(conds []Condition) []Condition {
	clean := make([]Condition, 0, len(conds))
	for _, c := range conds {
		c.Kind = Kind(strings.TrimSpace(string(c.Kind)))
		if c.Kind == "" {
			continue
		}
		if c.Operator != OperatorExclude {
			c.Operator = OperatorInclude
		}
		c.Value = strings.TrimSpace(c.Value)
		clean = append(clean, c)
	}
	return clean
}
