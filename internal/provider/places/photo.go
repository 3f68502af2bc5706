// Package places resolves a free-text place name to a Google Places photo URL.
package places

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"googlemaps.github.io/maps"
)

const DefaultBaseURL = "https://maps.googleapis.com"

// Client looks up place photos. Lookups are memoized, including misses,
// because the same addresses repeat across revisions of one trip.
type Client struct {
	apiKey  string
	baseURL string
	maps    *maps.Client
	cache   *gocache.Cache
}

// NewClient builds a client for apiKey. baseURL overrides the Maps host.
// Without a key every lookup misses.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   gocache.New(time.Hour, 10*time.Minute),
	}
	if apiKey == "" {
		return c
	}
	mc, err := maps.NewClient(
		maps.WithAPIKey(apiKey),
		maps.WithBaseURL(c.baseURL),
		maps.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}),
	)
	if err != nil {
		log.Printf("places: client disabled: %v", err)
		return c
	}
	c.maps = mc
	return c
}

// PhotoURL returns a 1600px photo URL for name. ok is false when the place
// or its photos cannot be found; errors are logged, never returned.
func (c *Client) PhotoURL(ctx context.Context, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || c.maps == nil {
		return "", false
	}
	if v, found := c.cache.Get(name); found {
		u := v.(string)
		return u, u != ""
	}

	u, err := c.lookup(ctx, name)
	if err != nil {
		log.Printf("places: photo lookup for %q failed: %v", name, err)
		return "", false
	}
	c.cache.SetDefault(name, u)
	return u, u != ""
}

func (c *Client) lookup(ctx context.Context, name string) (string, error) {
	found, err := c.maps.FindPlaceFromText(ctx, &maps.FindPlaceFromTextRequest{
		Input:     name,
		InputType: maps.FindPlaceFromTextInputTypeTextQuery,
		Fields:    []maps.PlaceSearchFieldMask{maps.PlaceSearchFieldMaskPlaceID},
	})
	if err != nil {
		return "", err
	}
	if len(found.Candidates) == 0 {
		return "", nil
	}

	details, err := c.maps.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: found.Candidates[0].PlaceID,
		Fields:  []maps.PlaceDetailsFieldMask{maps.PlaceDetailsFieldMaskPhotos},
	})
	if err != nil {
		return "", err
	}
	if len(details.Photos) == 0 {
		return "", nil
	}
	return c.photoURL(details.Photos[0].PhotoReference), nil
}

// photoURL points at the photo endpoint itself so the browser fetches the
// image; maps.Client.PlacePhoto would download it server-side.
func (c *Client) photoURL(ref string) string {
	q := url.Values{}
	q.Set("maxwidth", "1600")
	q.Set("photoreference", ref)
	q.Set("key", c.apiKey)
	return c.baseURL + "/maps/api/place/photo?" + q.Encode()
}
