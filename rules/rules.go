// Package rules resolves page URLs against the configured focus rules.
package rules

import (
	"strings"

	"github.com/focusflow/focusflow/internal/models"
)

// internalPrefixes identify browser-internal pages that are never tracked.
var internalPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"edge://",
	"about:",
	"devtools://",
	"view-source:",
	"blob:",
}

// IsTrackable reports whether a URL belongs to page content that can be
// matched against rules. Empty URLs and internal browser pages are filtered
// out before any rule processing.
func IsTrackable(url string) bool {
	if strings.TrimSpace(url) == "" {
		return false
	}

	lower := strings.ToLower(url)

	for _, prefix := range internalPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	return true
}

// Match returns the first rule (in list order) whose pattern is a
// case-insensitive substring of the URL, or nil when no rule applies.
// Overlapping rules resolve by insertion order, not specificity; first-match
// keeps the behavior predictable for the user editing the list.
func Match(url string, ruleList []models.Rule) *models.Rule {
	lower := strings.ToLower(url)

	for i := range ruleList {
		if strings.Contains(lower, strings.ToLower(ruleList[i].URL)) {
			return &ruleList[i]
		}
	}

	return nil
}

// SiteKey normalizes a rule pattern into the key used for the per-site
// breakdown. The pattern, not the full URL, identifies the site so all pages
// under one rule aggregate together.
func SiteKey(rule *models.Rule) string {
	return strings.ToLower(strings.TrimSpace(rule.URL))
}
