package social

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/iliyamo/ai-travel-planner/internal/model"
)

// DefaultLimit is used when a request does not name one.
const DefaultLimit = 12

// Origin tells real provider results apart from generated placeholders.
type Origin int

const (
	Real Origin = iota
	Generated
)

type Item struct {
	Post   model.SocialMediaPost
	Origin Origin
}

// Content is the merged result of one lookup. Items holds real posts first
// and generated posts after them, already cut to the requested limit.
type Content struct {
	Destination string
	Items       []Item
	// Total counts every post gathered before the cut.
	Total int
}

// Degraded reports whether any placeholder made it into the result.
func (c Content) Degraded() bool {
	for _, it := range c.Items {
		if it.Origin == Generated {
			return true
		}
	}
	return false
}

func (c Content) Response() model.SocialMediaResponse {
	posts := make([]model.SocialMediaPost, len(c.Items))
	for i, it := range c.Items {
		posts[i] = it.Post
	}
	return model.SocialMediaResponse{Posts: posts, Destination: c.Destination, TotalCount: c.Total}
}

// VideoSource and WebSource are the upstream lookups the service merges.
type VideoSource interface {
	SearchTravelVideos(ctx context.Context, destination string, tags []string, max int) ([]Video, error)
}

type WebSource interface {
	Enabled() bool
	SiteContent(ctx context.Context, destination string, tags []string, max int) []Hit
	GeneralContent(ctx context.Context, destination string, max int) []Hit
}

type Service struct {
	Videos VideoSource
	Web    WebSource

	mu  sync.Mutex
	rng *rand.Rand
}

func NewService(videos VideoSource, web WebSource) *Service {
	return &Service{Videos: videos, Web: web, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Content gathers up to req.Limit posts: a quarter from YouTube, then
// social and guide sites, then general travel pages, and finally generated
// placeholders for whatever is still missing.
func (s *Service) Content(ctx context.Context, req model.SocialMediaRequest) Content {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	dest := req.Destination
	var items []Item

	if s.Videos != nil {
		videos, err := s.Videos.SearchTravelVideos(ctx, dest, req.Tags, limit/4)
		if err != nil {
			log.Printf("social: youtube lookup failed: %v", err)
		}
		for _, v := range videos {
			items = append(items, Item{Post: model.SocialMediaPost{
				ID:          "youtube_" + v.ID,
				Title:       v.Title,
				Description: clip(v.Description, 200),
				Creator:     v.ChannelTitle,
				Likes:       v.Likes,
				Duration:    v.Duration,
				Thumbnail:   v.Thumbnail,
				VideoURL:    "https://www.youtube.com/watch?v=" + v.ID,
				Tags:        ExtractTags(v.Title+" "+v.Description, dest),
				Platform:    model.PlatformYouTube,
			}})
		}
	}

	if s.Web != nil && s.Web.Enabled() && len(items) < limit {
		for _, h := range s.Web.SiteContent(ctx, dest, req.Tags, limit-len(items)) {
			items = append(items, Item{Post: hitPost(h, dest, string(h.Platform), titleCase(string(h.Platform)), "1K+", "2:00", "6A5ACD")})
		}
		if len(items) < limit {
			for _, h := range s.Web.GeneralContent(ctx, dest, limit-len(items)) {
				items = append(items, Item{Post: hitPost(h, dest, "web", "Travel Blogger", "500+", "3:00", "4ECDC4")})
			}
		}
	}

	if len(items) < limit {
		s.mu.Lock()
		generated := Fallback(dest, limit-len(items), s.rng)
		s.mu.Unlock()
		for _, p := range generated {
			items = append(items, Item{Post: p, Origin: Generated})
		}
	}

	total := len(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return Content{Destination: dest, Items: items, Total: total}
}

func hitPost(h Hit, dest, idPrefix, creator, likes, duration, color string) model.SocialMediaPost {
	thumb := h.Thumbnail
	if thumb == "" {
		thumb = fmt.Sprintf("https://via.placeholder.com/200x350/%s/FFFFFF?text=%s", color, url.QueryEscape(dest))
	}
	return model.SocialMediaPost{
		ID:          fmt.Sprintf("%s_%s", idPrefix, linkHash(h.Link)),
		Title:       h.Title,
		Description: h.Snippet,
		Creator:     creator,
		Likes:       likes,
		Duration:    duration,
		Thumbnail:   thumb,
		VideoURL:    h.Link,
		Tags:        ExtractTags(h.Title+" "+h.Snippet, dest),
		Platform:    h.Platform,
	}
}

func linkHash(link string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(link))
	return fmt.Sprintf("%x", h.Sum64())
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// titleCase upper-cases the first letter of every word ("travel_blog" ->
// "Travel_Blog").
func titleCase(s string) string {
	var b strings.Builder
	prev := ' '
	for _, r := range s {
		if !unicode.IsLetter(prev) {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
