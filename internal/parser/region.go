package parser

import (
	"strings"

	"health-rag/internal/models"
)

// ExtractRegion guesses the user's region from a free-text query.
//
// Keywords are tried in order; for the first keyword present and followed by
// at least one word, the first one or two words after it (up to the next
// occurrence of the same keyword) are returned lowercased.
func ExtractRegion(query string) string {
	lower := strings.ToLower(query)
	for _, keyword := range models.RegionKeywords {
		parts := strings.Split(lower, keyword)
		if len(parts) < 2 {
			continue
		}
		words := strings.Fields(parts[1])
		if len(words) == 0 {
			continue
		}
		if len(words) > 2 {
			words = words[:2]
		}
		return strings.Join(words, " ")
	}
	return models.UnknownRegion
}
