package utils

import "github.com/microcosm-cc/bluemonday"

var (
	sanitizer = bluemonday.UGCPolicy()
	textOnly  = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks while keeping basic markup.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// SanitizeText strips all markup. Diary free-text fields are plain text; any
// HTML in them is noise or an attack.
func SanitizeText(input string) string {
	return textOnly.Sanitize(input)
}
