package utils

import (
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Slugify converts a string to a URL-friendly slug
func Slugify(s string) string {
	out := slug.Make(s)
	if out == "" {
		return ShortID()
	}
	return out
}

// SlugWithSuffix appends a short random suffix, used when a slug is taken
func SlugWithSuffix(s string) string {
	return Slugify(s) + "-" + ShortID()
}

// ShortID returns the first eight hex characters of a random UUID
func ShortID() string {
	return strings.ToLower(uuid.New().String()[:8])
}
