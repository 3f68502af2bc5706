package flights

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAirportCode(t *testing.T) {
	cases := map[string]string{
		"Tokyo":      "NRT",
		"tokyo":      "NRT",
		"东京":         "HND",
		"HONG KONG":  "HKG",
		"Osaka":      "KIX",
		"shanghai":   "PVG",
		"lax":        "LAX",
		"CdG":        "CDG",
		"Paris":      "HKG",
		"l4x":        "HKG",
		"":           "HKG",
		"new york":   "HKG",
	}
	for in, want := range cases {
		assert.Equal(t, want, AirportCode(in), "input %q", in)
	}
}

func offerAt(total string) Offer {
	var o Offer
	o.Price.Total = total
	return o
}

func TestFilterByBudget(t *testing.T) {
	offers := []Offer{offerAt("40"), offerAt("60"), offerAt("80")}
	got := FilterByBudget(offers, 70)
	require.Len(t, got, 2)
	assert.Equal(t, "40", got[0].Price.Total)
	assert.Equal(t, "60", got[1].Price.Total)

	assert.Len(t, FilterByBudget(offers, 0), 3)
	assert.Empty(t, FilterByBudget(offers, 10))
}

func TestFilterByBudgetDropsUnreadableTotals(t *testing.T) {
	offers := []Offer{offerAt("N/A"), offerAt(""), offerAt("NaN"), offerAt("-5"), offerAt("1,200.00"), offerAt(" 50.5 ")}
	got := FilterByBudget(offers, 70)
	require.Len(t, got, 1)
	assert.Equal(t, " 50.5 ", got[0].Price.Total)
}

func TestOfferTotal(t *testing.T) {
	total, ok := offerAt("4525.30").Total()
	assert.True(t, ok)
	assert.InDelta(t, 4525.30, total, 1e-9)

	_, ok = offerAt("about 300").Total()
	assert.False(t, ok)
	_, ok = offerAt("+Inf").Total()
	assert.False(t, ok)
}

func TestExtractFlight(t *testing.T) {
	o := Offer{Itineraries: []Itinerary{{
		Duration: "PT3H25M",
		Segments: []Segment{{
			Departure:   Endpoint{IataCode: "HKG", At: "2026-02-06T14:55:00"},
			Arrival:     Endpoint{IataCode: "KIX", At: "2026-02-06T19:20:00"},
			CarrierCode: "CX",
		}},
	}}}
	f, ok := ExtractFlight(o, "Hong Kong", "Osaka")
	require.True(t, ok)
	assert.Equal(t, "14:55", f.DepartureTime)
	assert.Equal(t, "2026-02-06", f.DepartureDate)
	assert.Equal(t, "19:20", f.ArrivalTime)
	assert.Equal(t, "3h25m", f.Duration)
	assert.Equal(t, "CX", f.Airline)
	assert.True(t, f.Nonstop)

	_, ok = ExtractFlight(Offer{}, "a", "b")
	assert.False(t, ok)
}

func TestPlaceholderFlights(t *testing.T) {
	pair := PlaceholderFlights()
	require.Len(t, pair, 2)
	assert.Equal(t, "Cathay Pacific", pair[0].Airline)
	assert.Equal(t, "HK Express", pair[1].Airline)
}

func amadeusStub(t *testing.T, prices ...string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","expires_in":1799}`)
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("nonStop"))
		assert.Equal(t, "50", q.Get("max"))
		if q.Get("originLocationCode") == "ERR" {
			http.Error(w, `{"errors":[{"detail":"boom"}]}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[`)
		for i, p := range prices {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id":"%d","price":{"total":"%s","currency":"EUR"},"itineraries":[{"duration":"PT2H","segments":[{"departure":{"iataCode":"%s","at":"2026-02-06T08:00:00"},"arrival":{"iataCode":"%s","at":"2026-02-06T10:00:00"},"carrierCode":"UO"}]}]}`,
				i+1, p, q.Get("originLocationCode"), q.Get("destinationLocationCode"))
		}
		fmt.Fprint(w, `]}`)
	})
	return httptest.NewServer(mux)
}

func TestSearchWithBudget(t *testing.T) {
	srv := amadeusStub(t, "40", "60", "80")
	defer srv.Close()

	c := NewClient(Config{ClientID: "id", ClientSecret: "secret", BaseURL: srv.URL})
	res := c.SearchWithBudget(context.Background(), "hong kong", "osaka", "2026-02-06", 2, 70)
	require.Equal(t, Found, res.Outcome)
	require.Len(t, res.Offers, 2)
	first, ok := res.First()
	require.True(t, ok)
	assert.Equal(t, "40", first.Price.Total)
	assert.Equal(t, "HKG", first.Itineraries[0].Segments[0].Departure.IataCode)

	res = c.SearchWithBudget(context.Background(), "hong kong", "osaka", "2026-02-06", 2, 10)
	assert.Equal(t, Empty, res.Outcome)

	res = c.SearchWithBudget(context.Background(), "err", "osaka", "2026-02-06", 2, 10)
	assert.Equal(t, Failed, res.Outcome)
	assert.Error(t, res.Err)
}

func TestRoundTripSplitsBudget(t *testing.T) {
	srv := amadeusStub(t, "90", "110")
	defer srv.Close()

	c := NewClient(Config{ClientID: "id", ClientSecret: "secret", BaseURL: srv.URL})
	out, in := c.RoundTrip(context.Background(), RoundTripQuery{
		Departure: "Hong Kong", Destination: "Osaka", People: 1, Budget: 200,
		OutboundOn: "2026-02-06", ReturnOn: "2026-02-12",
	})
	require.Equal(t, Found, out.Outcome)
	assert.Len(t, out.Offers, 1)
	require.Equal(t, Found, in.Outcome)
	assert.Equal(t, "KIX", in.Offers[0].Itineraries[0].Segments[0].Departure.IataCode)
}

func TestSearchWithoutCredentials(t *testing.T) {
	res := NewClient(Config{}).SearchWithBudget(context.Background(), "HKG", "KIX", "2026-02-06", 1, 100)
	assert.Equal(t, Failed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrNotConfigured)
}
