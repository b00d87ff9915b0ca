package domain

import (
	"regexp"
	"strings"
)

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
	slugDashes = regexp.MustCompile(`-+`)
)

// Slugify maps a product name to its URL token: lowercase, drop everything
// but letters, digits, whitespace and hyphens, turn whitespace runs into one
// hyphen, collapse repeated hyphens. Leading and trailing hyphens are then
// trimmed, so "Kurta -" becomes "kurta" rather than "kurta-".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NeedsNewSlug reports whether an update must recompute the slug. An
// unchanged name keeps the slug already published in URLs.
func NeedsNewSlug(oldName, newName, currentSlug string) bool {
	return currentSlug == "" || oldName != newName
}
