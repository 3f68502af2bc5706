package social

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/iliyamo/ai-travel-planner/internal/model"
)

type theme struct {
	title, description string
	tags               []string
}

func themes(d string) []theme {
	return []theme{
		{fmt.Sprintf("Ultimate %s Travel Guide", d),
			fmt.Sprintf("Everything you need to know before visiting %s - from must-see attractions to hidden gems!", d),
			[]string{"guide", "tips", "itinerary"}},
		{fmt.Sprintf("%s Food Tour", d),
			fmt.Sprintf("Exploring the best local cuisine and street food in %s. Don't miss these delicious dishes!", d),
			[]string{"food", "cuisine", "streetfood"}},
		{fmt.Sprintf("Hidden Gems in %s", d),
			fmt.Sprintf("Discover secret spots and local favorites that most tourists never find in %s.", d),
			[]string{"hidden", "local", "secret"}},
		{fmt.Sprintf("%s on a Budget", d),
			fmt.Sprintf("How to experience the best of %s without breaking the bank. Money-saving tips included!", d),
			[]string{"budget", "cheap", "affordable"}},
		{fmt.Sprintf("%s Nightlife Experience", d),
			fmt.Sprintf("From cozy bars to vibrant clubs - experience %s's amazing nightlife scene.", d),
			[]string{"nightlife", "bars", "entertainment"}},
		{fmt.Sprintf("%s Cultural Journey", d),
			fmt.Sprintf("Immerse yourself in the rich culture and traditions of %s. Historical sites and local experiences.", d),
			[]string{"culture", "history", "traditional"}},
	}
}

var (
	fallbackCreators = []string{
		"@TravelExpert", "@Wanderlust", "@LocalGuide", "@FoodieAdventures",
		"@BudgetTraveler", "@LuxuryExplorer", "@CultureSeeker", "@AdventureTime",
	}
	fallbackColors    = []string{"FF6B6B", "4ECDC4", "45B7D1", "96CEB4", "FECA57", "FF9FF3"}
	fallbackPlatforms = []model.Platform{model.PlatformTikTok, model.PlatformYouTube, model.PlatformInstagram}
)

// FallbackThemes is the most placeholders Fallback can produce.
const FallbackThemes = 6

// Fallback generates up to n placeholder posts about destination. Titles,
// descriptions and tags are fixed per theme; creator, likes, duration,
// thumbnail color and platform are drawn from rng.
func Fallback(destination string, n int, rng *rand.Rand) []model.SocialMediaPost {
	ts := themes(destination)
	if n > len(ts) {
		n = len(ts)
	}
	if n <= 0 {
		return nil
	}
	posts := make([]model.SocialMediaPost, 0, n)
	for i := 0; i < n; i++ {
		th := ts[i]
		posts = append(posts, model.SocialMediaPost{
			ID:          fmt.Sprintf("fallback_%d", i),
			Title:       th.title,
			Description: th.description,
			Creator:     fallbackCreators[rng.Intn(len(fallbackCreators))],
			Likes:       fmt.Sprintf("%dK", 5+rng.Intn(146)),
			Duration:    fmt.Sprintf("%d:%02d", 1+rng.Intn(4), rng.Intn(60)),
			Thumbnail: fmt.Sprintf("https://via.placeholder.com/200x350/%s/FFFFFF?text=%s",
				fallbackColors[rng.Intn(len(fallbackColors))], strings.ReplaceAll(destination, " ", "+")),
			VideoURL: "#",
			Tags:     append([]string{strings.ToLower(destination)}, th.tags...),
			Platform: fallbackPlatforms[rng.Intn(len(fallbackPlatforms))],
		})
	}
	return posts
}
