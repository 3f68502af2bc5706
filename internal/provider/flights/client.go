// Package flights searches nonstop flight offers on the Amadeus
// self-service API and shapes them for the itinerary response.
package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultBaseURL = "https://test.api.amadeus.com"
	maxResults     = 50
)

// ErrNotConfigured is returned when no API credentials were supplied.
var ErrNotConfigured = errors.New("flight provider not configured")

// Outcome tells a caller whether a search found offers, found nothing or
// failed upstream.
type Outcome int

const (
	Found Outcome = iota
	Empty
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Empty:
		return "empty"
	default:
		return "failed"
	}
}

// SearchResult carries budget-filtered offers in provider order.
type SearchResult struct {
	Outcome Outcome
	Offers  []Offer
	Err     error
}

// First returns the provider's first offer.
func (r SearchResult) First() (Offer, bool) {
	if r.Outcome != Found || len(r.Offers) == 0 {
		return Offer{}, false
	}
	return r.Offers[0], true
}

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// Client is safe for concurrent use; the OAuth token is shared and
// refreshed by the underlying token source.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{baseURL: base}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return c
	}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + "/v1/security/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	hc := cc.Client(context.Background())
	hc.Timeout = 30 * time.Second
	c.httpClient = hc
	return c
}

type offersResponse struct {
	Data []Offer `json:"data"`
}

// SearchWithBudget runs a nonstop one-way search capped at 50 results and
// drops offers priced above maxBudget. Provider errors are logged and
// reported as Failed; no retry is attempted.
func (c *Client) SearchWithBudget(ctx context.Context, origin, destination, date string, adults int, maxBudget float64) SearchResult {
	if c.httpClient == nil {
		return SearchResult{Outcome: Failed, Err: ErrNotConfigured}
	}
	if adults < 1 {
		adults = 1
	}
	q := url.Values{}
	q.Set("originLocationCode", AirportCode(origin))
	q.Set("destinationLocationCode", AirportCode(destination))
	q.Set("departureDate", date)
	q.Set("adults", strconv.Itoa(adults))
	q.Set("nonStop", "true")
	q.Set("max", strconv.Itoa(maxResults))

	offers, err := c.fetch(ctx, "/v2/shopping/flight-offers?"+q.Encode())
	if err != nil {
		log.Printf("flights: search %s->%s on %s failed: %v", q.Get("originLocationCode"), q.Get("destinationLocationCode"), date, err)
		return SearchResult{Outcome: Failed, Err: err}
	}
	filtered := FilterByBudget(offers, maxBudget)
	log.Printf("flights: %d offers, %d within budget %.0f", len(offers), len(filtered), maxBudget)
	if len(filtered) == 0 {
		return SearchResult{Outcome: Empty}
	}
	return SearchResult{Outcome: Found, Offers: filtered}
}

func (c *Client) fetch(ctx context.Context, path string) ([]Offer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("amadeus status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out offersResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode offers: %w", err)
	}
	return out.Data, nil
}

// RoundTripQuery describes both legs of a trip. Dates are YYYY-MM-DD.
type RoundTripQuery struct {
	Departure   string
	Destination string
	People      int
	Budget      float64
	OutboundOn  string
	ReturnOn    string
}

// RoundTrip searches the outbound and inbound legs independently, each
// capped at half of the total budget.
func (c *Client) RoundTrip(ctx context.Context, q RoundTripQuery) (outbound, inbound SearchResult) {
	perLeg := q.Budget * 0.5
	outbound = c.SearchWithBudget(ctx, q.Departure, q.Destination, q.OutboundOn, q.People, perLeg)
	inbound = c.SearchWithBudget(ctx, q.Destination, q.Departure, q.ReturnOn, q.People, perLeg)
	return outbound, inbound
}
