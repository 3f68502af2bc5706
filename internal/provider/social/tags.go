package social

import (
	"strings"

	"github.com/samber/lo"
)

const maxTags = 5

// travelKeywords maps a tag to the words that trigger it, in priority order.
var travelKeywords = []struct {
	tag   string
	words []string
}{
	{"food", []string{"food", "restaurant", "eat", "dining", "cuisine", "meal"}},
	{"attraction", []string{"attraction", "landmark", "sight", "tour", "visit"}},
	{"adventure", []string{"adventure", "hiking", "explore", "outdoor"}},
	{"culture", []string{"culture", "historical", "museum", "temple", "shrine"}},
	{"shopping", []string{"shopping", "market", "mall", "store"}},
	{"nightlife", []string{"nightlife", "bar", "club", "night", "party"}},
	{"budget", []string{"budget", "cheap", "affordable", "save"}},
	{"luxury", []string{"luxury", "premium", "expensive", "luxurious"}},
}

// ExtractTags derives at most five tags for a post: the destination,
// "travel" and every category whose keywords occur in text.
func ExtractTags(text, destination string) []string {
	lower := strings.ToLower(text)
	tags := []string{strings.ToLower(destination), "travel"}
	for _, kw := range travelKeywords {
		if lo.SomeBy(kw.words, func(w string) bool { return strings.Contains(lower, w) }) {
			tags = append(tags, kw.tag)
		}
	}
	tags = lo.Uniq(lo.Compact(tags))
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}
