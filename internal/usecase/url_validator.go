package usecase

import (
	"regexp"
	"strings"

	"github.com/instafinder/backend/internal/domain"
)

// instagramURLRegex anchors the pattern like browser constraint validation does
var instagramURLRegex = regexp.MustCompile(`^(?:` + domain.InstagramURLPattern + `)$`)

// NormalizeInput trims surrounding whitespace from the raw input value
func NormalizeInput(raw string) string {
	return strings.TrimSpace(raw)
}

// ValidateInstagramURL checks a normalized input value against the pattern.
// The value is required.
func ValidateInstagramURL(url string) error {
	if url == "" || !instagramURLRegex.MatchString(url) {
		return domain.ErrInvalidURL
	}
	return nil
}
