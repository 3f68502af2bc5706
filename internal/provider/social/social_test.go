package social

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ai-travel-planner/internal/model"
)

func TestExtractTags(t *testing.T) {
	tags := ExtractTags("Best street FOOD and night market tour with museum visits", "Osaka")
	assert.Equal(t, []string{"osaka", "travel", "food", "attraction", "culture"}, tags)

	assert.Equal(t, []string{"travel"}, ExtractTags("nothing relevant", "Travel"))
	assert.LessOrEqual(t, len(ExtractTags("food tour hiking temple mall bar cheap luxury", "Kyoto")), 5)
}

func TestEstimatePopularity(t *testing.T) {
	// "best" + "top" hot, "views" engagement, 20..80 char title.
	assert.Equal(t, 30, EstimatePopularity("Top 10 best things in Osaka", "1M views"))
	assert.Equal(t, 0, EstimatePopularity("short", ""))
}

func TestBalancePlatforms(t *testing.T) {
	hits := []Hit{
		{Link: "t1", Platform: model.PlatformTikTok, Popularity: 1},
		{Link: "t2", Platform: model.PlatformTikTok, Popularity: 9},
		{Link: "t3", Platform: model.PlatformTikTok, Popularity: 5},
		{Link: "y1", Platform: model.PlatformYouTube, Popularity: 3},
	}
	got := BalancePlatforms(hits, 3)
	require.Len(t, got, 3)
	// one per platform first, then the best leftover.
	assert.Equal(t, "t2", got[0].Link)
	assert.Equal(t, "y1", got[1].Link)
	assert.Equal(t, "t3", got[2].Link)

	assert.Nil(t, BalancePlatforms(nil, 3))
}

func TestFallbackShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	posts := Fallback("Hong Kong", 10, rng)
	require.Len(t, posts, FallbackThemes)
	for i, p := range posts {
		assert.Equal(t, fmt.Sprintf("fallback_%d", i), p.ID)
		assert.Contains(t, p.Title, "Hong Kong")
		assert.Equal(t, "hong kong", p.Tags[0])
		assert.Len(t, p.Tags, 4)
		assert.Contains(t, fallbackCreators, p.Creator)
		assert.Contains(t, fallbackPlatforms, p.Platform)
		assert.True(t, strings.HasSuffix(p.Likes, "K"))
		assert.Regexp(t, `^[1-4]:[0-5][0-9]$`, p.Duration)
		assert.Contains(t, p.Thumbnail, "text=Hong+Kong")
		assert.Equal(t, "#", p.VideoURL)
	}
	assert.Len(t, Fallback("Osaka", 2, rng), 2)
	assert.Empty(t, Fallback("Osaka", 0, rng))
}

type fakeVideos struct {
	videos []Video
	err    error
}

func (f fakeVideos) SearchTravelVideos(context.Context, string, []string, int) ([]Video, error) {
	return f.videos, f.err
}

type fakeWeb struct{ site, general []Hit }

func (f fakeWeb) Enabled() bool { return true }
func (f fakeWeb) SiteContent(_ context.Context, _ string, _ []string, max int) []Hit {
	return f.site[:min(max, len(f.site))]
}
func (f fakeWeb) GeneralContent(_ context.Context, _ string, max int) []Hit {
	return f.general[:min(max, len(f.general))]
}

func TestContentBackfillsAfterRealItems(t *testing.T) {
	svc := NewService(
		fakeVideos{videos: []Video{{ID: "v1", Title: "Osaka food guide", Description: "eat"}}},
		fakeWeb{site: []Hit{{Title: "Osaka", Link: "https://www.tiktok.com/@a/video/1", Platform: model.PlatformTikTok}}},
	)
	c := svc.Content(context.Background(), model.SocialMediaRequest{Destination: "Osaka", Limit: 5})

	require.Len(t, c.Items, 5)
	assert.Equal(t, Real, c.Items[0].Origin)
	assert.Equal(t, "youtube_v1", c.Items[0].Post.ID)
	assert.Equal(t, Real, c.Items[1].Origin)
	assert.Equal(t, "Tiktok", c.Items[1].Post.Creator)
	for _, it := range c.Items[2:] {
		assert.Equal(t, Generated, it.Origin)
	}
	assert.True(t, c.Degraded())
	assert.Len(t, c.Response().Posts, 5)
}

func TestContentLengthIsBoundedByAvailability(t *testing.T) {
	svc := NewService(fakeVideos{err: errors.New("quota")}, nil)
	// Only six placeholders exist.
	c := svc.Content(context.Background(), model.SocialMediaRequest{Destination: "Osaka", Limit: 12})
	assert.Len(t, c.Items, FallbackThemes)

	c = svc.Content(context.Background(), model.SocialMediaRequest{Destination: "Osaka", Limit: 3})
	assert.Len(t, c.Items, 3)

	c = svc.Content(context.Background(), model.SocialMediaRequest{Destination: "Osaka"})
	assert.Len(t, c.Items, FallbackThemes)
}

func TestContentWithoutFallbackWhenRealSuffices(t *testing.T) {
	var site []Hit
	for i := 0; i < 8; i++ {
		site = append(site, Hit{Title: "t", Link: fmt.Sprintf("https://example.com/%d", i), Platform: model.PlatformWebsite})
	}
	svc := NewService(nil, fakeWeb{site: site})
	c := svc.Content(context.Background(), model.SocialMediaRequest{Destination: "Osaka", Limit: 4})
	assert.Len(t, c.Items, 4)
	assert.False(t, c.Degraded())
	assert.Contains(t, c.Items[0].Post.Thumbnail, "6A5ACD")
}

func TestYouTubeSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		switch {
		case strings.HasSuffix(r.URL.Path, "/youtube/v3/search"):
			assert.Equal(t, "4", r.URL.Query().Get("maxResults"))
			assert.Equal(t, "Osaka travel guide food", r.URL.Query().Get("q"))
			fmt.Fprint(w, `{"items":[
				{"id":{"kind":"youtube#video","videoId":"a"},"snippet":{"title":"A","description":"d","channelTitle":"c","thumbnails":{"high":{"url":"ta"}}}},
				{"id":{"kind":"youtube#channel","channelId":"x"},"snippet":{"title":"X"}},
				{"id":{"kind":"youtube#video","videoId":"b"},"snippet":{"title":"B","description":"d","channelTitle":"c","thumbnails":{"high":{"url":"tb"}}}}]}`)
		case strings.HasSuffix(r.URL.Path, "/youtube/v3/videos"):
			assert.ElementsMatch(t, []string{"a", "b"}, splitIDs(r.URL.Query()["id"]))
			fmt.Fprint(w, `{"items":[
				{"id":"a","contentDetails":{"duration":"PT4M5S"},"statistics":{"viewCount":"10","likeCount":"999"}},
				{"id":"b","contentDetails":{"duration":"PT1H"},"statistics":{"viewCount":"5000","likeCount":"1500000"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	videos, err := NewYouTube("k", srv.URL).SearchTravelVideos(context.Background(), "Osaka", []string{"food"}, 2)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "b", videos[0].ID)
	assert.Equal(t, "60:00", videos[0].Duration)
	assert.Equal(t, "1.5M", videos[0].Likes)
	assert.Equal(t, "4:05", videos[1].Duration)
	assert.Equal(t, "999", videos[1].Likes)
}

// splitIDs accepts both repeated and comma-joined id parameters.
func splitIDs(vals []string) []string {
	var out []string
	for _, v := range vals {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

func TestYouTubeWithoutKey(t *testing.T) {
	_, err := NewYouTube("", "").SearchTravelVideos(context.Background(), "Osaka", nil, 3)
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestSiteContentFiltersTikTok(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/customsearch/v1"), r.URL.Path)
		assert.Equal(t, "cx-1", r.URL.Query().Get("cx"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"items":[
			{"title":"Profile","link":"https://www.tiktok.com/@someone","snippet":""},
			{"title":"Clip","link":"https://www.tiktok.com/@someone/video/42","snippet":"","pagemap":{"cse_image":[{"src":"img"}]}},
			{"title":"Guide","link":"https://www.tripadvisor.com/Osaka","snippet":"","pagemap":{"cse_thumbnail":[{"src":"thumb"}]}}]}`)
	}))
	defer srv.Close()

	s := NewSearch("k", "cx-1", srv.URL)
	hits := s.SiteContent(context.Background(), "Osaka", nil, 6)
	for _, h := range hits {
		assert.NotEqual(t, "https://www.tiktok.com/@someone", h.Link)
	}
	platforms := map[model.Platform]string{}
	for _, h := range hits {
		platforms[h.Platform] = h.Thumbnail
	}
	assert.Equal(t, "img", platforms[model.PlatformTikTok])
	assert.Equal(t, "thumb", platforms[model.PlatformTripAdvisor])
}

func TestSearchWithoutKey(t *testing.T) {
	s := NewSearch("", "cx-1", "")
	assert.False(t, s.Enabled())
	_, err := s.Query(context.Background(), "Osaka", 3)
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "0:00", FormatClock("garbage"))
	assert.Equal(t, "1:30", FormatClock("PT1M30S"))
	assert.Equal(t, "12.3K", FormatCount("12345"))
	assert.Equal(t, "0", FormatCount("n/a"))
}
