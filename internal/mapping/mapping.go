package mapping

import (
	"log/slog"
	"regexp"
)

// PatternSpec is one uncompiled pattern mapping: a regex string paired with
// a destination template that may reference captures as $name or $N.
type PatternSpec struct {
	Place    string
	Regex    string
	Template string
}

// Rule is a compiled pattern mapping. Rules are evaluated in slice order;
// the first whose regex matches the path wins.
type Rule struct {
	regex    *regexp.Regexp
	template string
}

// Table is the immutable configuration snapshot queried per request.
type Table struct {
	standard map[string]string
	rules    []Rule
}

// New compiles the pattern specs and builds the lookup table. A regex that
// fails to compile is logged and excluded; construction itself never fails,
// and an empty table is valid (every path resolves to not-found).
func New(standard map[string]string, patterns []PatternSpec, logger *slog.Logger) *Table {
	if standard == nil {
		standard = make(map[string]string)
	}

	rules := make([]Rule, 0, len(patterns))
	for _, spec := range patterns {
		regex, err := regexp.Compile(spec.Regex)
		if err != nil {
			logger.Warn("skipping pattern mapping with invalid regex",
				slog.String("place", spec.Place),
				slog.String("regex", spec.Regex),
				slog.String("error", err.Error()))
			continue
		}

		logger.Info("Compiled pattern mapping",
			slog.String("place", spec.Place),
			slog.String("regex", spec.Regex),
			slog.String("template", spec.Template))

		rules = append(rules, Rule{regex: regex, template: spec.Template})
	}

	return &Table{standard: standard, rules: rules}
}

// Len reports how many mappings are active.
func (t *Table) Len() int {
	return len(t.standard) + len(t.rules)
}
