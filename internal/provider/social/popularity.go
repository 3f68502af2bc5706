package social

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/iliyamo/ai-travel-planner/internal/model"
)

var (
	hotKeywords = []string{
		"viral", "popular", "trending", "must-see", "best", "top",
		"amazing", "incredible", "awesome", "fantastic", "recommended",
		"most viewed", "most liked", "go viral",
	}
	engagementKeywords = []string{
		"like", "share", "comment", "views", "follow", "subscribe",
		"million", "thousand", "k views",
	}
)

// EstimatePopularity scores a search hit from its wording: 10 per hot
// keyword, 5 per engagement keyword and 5 for a 20..80 character title.
func EstimatePopularity(title, snippet string) int {
	text := strings.ToLower(title + " " + snippet)
	score := 0
	for _, k := range hotKeywords {
		if strings.Contains(text, k) {
			score += 10
		}
	}
	for _, k := range engagementKeywords {
		if strings.Contains(text, k) {
			score += 5
		}
	}
	if n := len(title); n >= 20 && n <= 80 {
		score += 5
	}
	return score
}

// Hit is one web-search result.
type Hit struct {
	Title      string
	Link       string
	Snippet    string
	Platform   model.Platform
	Thumbnail  string
	Popularity int
}

func byPopularity(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Popularity > hits[j].Popularity })
}

// BalancePlatforms spreads max slots evenly over the platforms present,
// taking the most popular hits of each, then tops up from the leftovers by
// popularity. Platforms keep their first-seen order.
func BalancePlatforms(hits []Hit, max int) []Hit {
	if len(hits) == 0 || max <= 0 {
		return nil
	}
	groups := lo.GroupBy(hits, func(h Hit) model.Platform { return h.Platform })
	platforms := lo.Uniq(lo.Map(hits, func(h Hit, _ int) model.Platform { return h.Platform }))
	for _, p := range platforms {
		byPopularity(groups[p])
	}

	perPlatform := max / len(platforms)
	if perPlatform < 1 {
		perPlatform = 1
	}

	var picked, rest []Hit
	for _, p := range platforms {
		g := groups[p]
		n := lo.Min([]int{perPlatform, len(g)})
		picked = append(picked, g[:n]...)
		rest = append(rest, g[n:]...)
	}
	if len(picked) < max {
		byPopularity(rest)
		need := max - len(picked)
		if need > len(rest) {
			need = len(rest)
		}
		picked = append(picked, rest[:need]...)
	}
	return picked
}
