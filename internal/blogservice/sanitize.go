package blogservice

import "regexp"

var scriptTagPattern = regexp.MustCompile(`(?i)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

// sanitizeRichText strips script tags from editor-submitted HTML before it is
// stored.
func sanitizeRichText(body string) string {
	return scriptTagPattern.ReplaceAllString(body, "")
}
