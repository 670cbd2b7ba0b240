package helpers

import "strings"

// ProductCode derives the catalog lookup code from a product link. Dots and
// slashes both delimit path segments; the code is the segment before the
// trailing one, so "https://www.adidas.fr/chaussure-x/IF1234.html" yields
// "IF1234".
func ProductCode(link string) string {
	normalized := strings.ReplaceAll(link, ".", "/")
	parts := strings.Split(normalized, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}
