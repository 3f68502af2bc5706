package social

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/customsearch/v1"

	"github.com/iliyamo/ai-travel-planner/internal/model"
)

// Search wraps the Google Custom Search JSON API for one engine id.
type Search struct {
	svc      *customsearch.Service
	err      error
	engineID string
}

// NewSearch builds a Custom Search client. endpoint overrides the API host
// and is empty in production.
func NewSearch(apiKey, engineID, endpoint string) *Search {
	s := &Search{engineID: engineID}
	if apiKey == "" {
		s.err = ErrNoKey
		return s
	}
	s.svc, s.err = customsearch.NewService(context.Background(), serviceOptions(apiKey, endpoint)...)
	return s
}

// Enabled reports whether an engine id was configured.
func (s *Search) Enabled() bool { return s != nil && s.engineID != "" && s.err == nil }

type pagemap struct {
	Thumbnail []struct {
		Src string `json:"src"`
	} `json:"cse_thumbnail"`
	Image []struct {
		Src string `json:"src"`
	} `json:"cse_image"`
}

// thumbnailOf prefers the CSE thumbnail over the page image.
func thumbnailOf(raw any) string {
	b, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	var pm pagemap
	if json.Unmarshal(b, &pm) != nil {
		return ""
	}
	if len(pm.Thumbnail) > 0 {
		return pm.Thumbnail[0].Src
	}
	if len(pm.Image) > 0 {
		return pm.Image[0].Src
	}
	return ""
}

// Query runs one search and returns the raw hits with platform "website"
// and their popularity scored. num is clamped to the API's 1..10 range.
func (s *Search) Query(ctx context.Context, query string, num int) ([]Hit, error) {
	if s.err != nil {
		return nil, s.err
	}
	num = max(1, min(num, 10))
	res, err := s.svc.Cse.List().
		Q(query).
		Cx(s.engineID).
		Num(int64(num)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(res.Items))
	for _, it := range res.Items {
		hits = append(hits, Hit{
			Title:      it.Title,
			Link:       it.Link,
			Snippet:    it.Snippet,
			Thumbnail:  thumbnailOf(it.Pagemap),
			Platform:   model.PlatformWebsite,
			Popularity: EstimatePopularity(it.Title, it.Snippet),
		})
	}
	return hits, nil
}

// platformOf classifies a link. TikTok links that are not video pages are
// rejected.
func platformOf(link string, fallback model.Platform) (model.Platform, bool) {
	switch {
	case strings.Contains(link, "tiktok.com"):
		if !strings.Contains(link, "/video/") {
			return "", false
		}
		return model.PlatformTikTok, true
	case strings.Contains(link, "youtube.com"):
		return model.PlatformYouTube, true
	case strings.Contains(link, "instagram.com"):
		return model.PlatformInstagram, true
	case strings.Contains(link, "tripadvisor.com"):
		return model.PlatformTripAdvisor, true
	case strings.Contains(link, "lonelyplanet.com"):
		return model.PlatformLonelyPlanet, true
	}
	return fallback, true
}

// SiteContent searches the social and guide sites for destination and
// returns a platform-balanced selection.
func (s *Search) SiteContent(ctx context.Context, destination string, tags []string, max int) []Hit {
	extra := strings.Join(tags, " ")
	queries := []string{
		fmt.Sprintf(`site:tiktok.com "/video/" %s travel %s`, destination, extra),
		fmt.Sprintf(`site:tiktok.com "@" "/video/" %s %s`, destination, extra),
		fmt.Sprintf("site:youtube.com %s travel guide %s", destination, extra),
		fmt.Sprintf("site:instagram.com %s travel guide %s", destination, extra),
		fmt.Sprintf("site:tripadvisor.com %s travel guide %s", destination, extra),
		fmt.Sprintf("site:lonelyplanet.com %s travel guide %s", destination, extra),
	}

	var all []Hit
	for _, q := range queries[:3] {
		hits, err := s.Query(ctx, strings.TrimSpace(q), min(3, max))
		if err != nil {
			log.Printf("social: search %q failed: %v", q, err)
			continue
		}
		for _, h := range hits {
			p, ok := platformOf(h.Link, model.PlatformWebsite)
			if !ok {
				continue
			}
			h.Platform = p
			all = append(all, h)
		}
	}
	balanced := BalancePlatforms(all, max)
	if len(balanced) > max {
		balanced = balanced[:max]
	}
	return balanced
}

var skippedSites = []string{"wikipedia.org", "booking.com", "agoda.com"}

// GeneralContent searches blogs and videos about destination, most popular
// first.
func (s *Search) GeneralContent(ctx context.Context, destination string, max int) []Hit {
	queries := []string{
		fmt.Sprintf(`%s travel "/video/" site:tiktok.com`, destination),
		fmt.Sprintf("%s travel blog things to do", destination),
		fmt.Sprintf("%s food tour attractions", destination),
		fmt.Sprintf("%s itinerary travel tips", destination),
	}

	var all []Hit
	for _, q := range queries[:2] {
		hits, err := s.Query(ctx, q, min(5, max))
		if err != nil {
			log.Printf("social: search %q failed: %v", q, err)
			continue
		}
	next:
		for _, h := range hits {
			for _, skip := range skippedSites {
				if strings.Contains(h.Link, skip) {
					continue next
				}
			}
			p, ok := platformOf(h.Link, model.PlatformTravelBlog)
			if !ok {
				continue
			}
			// General results only distinguish the video platforms.
			if p == model.PlatformTripAdvisor || p == model.PlatformLonelyPlanet {
				p = model.PlatformTravelBlog
			}
			h.Platform = p
			all = append(all, h)
		}
	}
	byPopularity(all)
	if len(all) > max {
		all = all[:max]
	}
	return all
}
