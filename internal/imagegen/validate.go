package imagegen

import (
	"fmt"
	"regexp"
	"strings"

	"mockupstudio/internal/domain"
)

// FallbackHex is used when the color answer is not a #RRGGBB code.
const FallbackHex = "#F3F4F6"

var hexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ResolveHex trims raw and returns it when it is a #RRGGBB code. Otherwise
// it returns FallbackHex and false.
func ResolveHex(raw string) (string, bool) {
	hex := strings.TrimSpace(raw)
	if hexPattern.MatchString(hex) {
		return hex, true
	}
	return FallbackHex, false
}

// ValidateDetails trims every field and rejects empty ones.
func ValidateDetails(d domain.ProductDetails) (domain.ProductDetails, error) {
	out := domain.ProductDetails{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Tags:        strings.TrimSpace(d.Tags),
	}
	var missing []string
	if out.Title == "" {
		missing = append(missing, "title")
	}
	if out.Description == "" {
		missing = append(missing, "description")
	}
	if out.Tags == "" {
		missing = append(missing, "tags")
	}
	if len(missing) > 0 {
		return domain.ProductDetails{}, fmt.Errorf("%w: details missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return out, nil
}
