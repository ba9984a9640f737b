// Package rules decides which category a file belongs to.
//
// Matching is a linear scan in list order and the first rule whose extension
// set or MIME set contains the file's extension or hint wins. Rule order is
// therefore user-visible: a more specific rule must be placed before a more
// general one.
package rules

import (
	"path/filepath"
	"strings"

	"filesorter/pkg/types"
)

// RuleSet is an ordered, read-only list of sort rules.
type RuleSet struct {
	rules    []types.SortRule
	usesMIME bool
}

// New builds a RuleSet from rules, keeping their order.
func New(rules []types.SortRule) *RuleSet {
	rs := &RuleSet{rules: make([]types.SortRule, len(rules))}
	copy(rs.rules, rules)
	for _, r := range rs.rules {
		if len(r.MimeTypes) > 0 {
			rs.usesMIME = true
			break
		}
	}
	return rs
}

// Rules returns a copy of the rules in match order.
func (rs *RuleSet) Rules() []types.SortRule {
	out := make([]types.SortRule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// UsesMIME reports whether any rule can match on a MIME hint, so callers
// can skip content detection entirely when none does.
func (rs *RuleSet) UsesMIME() bool {
	return rs.usesMIME
}

// NeedsHint reports whether a MIME hint could change which rule matches
// path: some MIME-bearing rule comes before the first rule matching the
// extension, or no rule matches the extension at all.
func (rs *RuleSet) NeedsHint(path string) bool {
	if !rs.usesMIME {
		return false
	}
	ext := Extension(path)
	for _, rule := range rs.rules {
		if ext != "" && contains(rule.Extensions, ext) {
			return false
		}
		if len(rule.MimeTypes) > 0 {
			return true
		}
	}
	return false
}

// Match finds the first rule for a candidate.
func (rs *RuleSet) Match(file types.FileCandidate) (types.SortRule, bool) {
	return FindMatch(rs.rules, file.Path, file.MIMEHint)
}

// FindMatch returns the first rule, in list order, whose extensions contain
// the extension of path or whose MIME types contain mimeHint.
func FindMatch(rules []types.SortRule, path string, mimeHint string) (types.SortRule, bool) {
	ext := Extension(path)
	for _, rule := range rules {
		if ext != "" && contains(rule.Extensions, ext) {
			return rule, true
		}
		if mimeHint != "" && contains(rule.MimeTypes, mimeHint) {
			return rule, true
		}
	}
	return types.SortRule{}, false
}

// Extension returns the lowercased text after the final '.' of the base
// name. Names without a dot, or whose only dot leads (".bashrc"), have none.
func Extension(path string) string {
	name := filepath.Base(path)
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
