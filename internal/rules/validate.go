package rules

import (
	"fmt"
	"strings"

	"filesorter/internal/errors"
	"filesorter/pkg/types"
)

// Validate checks rules at configuration time. A rule with no extensions and
// no MIME types matches nothing and is rejected, as is a destination label
// that is empty or is not a single folder name.
func Validate(rules []types.SortRule) error {
	for i, rule := range rules {
		name := fmt.Sprintf("rule %d (%s)", i+1, rule.Destination)

		if rule.IsEmpty() {
			return errors.NewRuleError("rule has no extensions and no mime types", name, errors.InvalidRule, nil)
		}

		label := strings.TrimSpace(rule.Destination)
		if label == "" {
			return errors.NewRuleError("destination label is required", name, errors.InvalidRule, nil)
		}
		if label == "." || label == ".." || strings.ContainsAny(label, `/\`) {
			return errors.NewRuleError("destination label must be a single folder name", name, errors.InvalidRule, nil)
		}

		for _, ext := range rule.Extensions {
			if ext == "" || strings.Contains(ext, ".") || ext != strings.ToLower(ext) {
				return errors.NewRuleError(
					"extension must be lowercase without dots", name, errors.InvalidRule,
					fmt.Errorf("got %q", ext))
			}
		}
		for _, mt := range rule.MimeTypes {
			if !strings.Contains(mt, "/") {
				return errors.NewRuleError("malformed mime type", name, errors.InvalidRule, fmt.Errorf("got %q", mt))
			}
		}
	}
	return nil
}
