package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// DownloadName converts a display name into the PNG file name offered for
// download, e.g. "Mockup T-Shirt" -> "mockup-t-shirt.png".
func DownloadName(name string) string {
	slug := strings.Join(strings.Fields(lower.String(name)), "-")
	if slug == "" {
		slug = "design"
	}
	return slug + ".png"
}
