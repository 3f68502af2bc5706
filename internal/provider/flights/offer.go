package flights

import (
	"math"
	"strconv"
	"strings"

	"github.com/iliyamo/ai-travel-planner/internal/model"
)

// Offer is the subset of an Amadeus flight-offer the planner reads.
type Offer struct {
	ID    string `json:"id"`
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	Itineraries []Itinerary `json:"itineraries"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Departure   Endpoint `json:"departure"`
	Arrival     Endpoint `json:"arrival"`
	CarrierCode string   `json:"carrierCode"`
	Number      string   `json:"number"`
}

type Endpoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"`
}

// Total parses the offer's grand total. ok is false when the total is
// missing, malformed, negative or not finite.
func (o Offer) Total() (total float64, ok bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(o.Price.Total), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// Duration returns the first itinerary's duration with the ISO "PT" prefix
// removed and lower-cased ("PT3H25M" -> "3h25m").
func (o Offer) Duration() string {
	if len(o.Itineraries) == 0 {
		return ""
	}
	return FormatDuration(o.Itineraries[0].Duration)
}

func FormatDuration(iso string) string {
	return strings.ToLower(strings.Replace(iso, "PT", "", 1))
}

// FilterByBudget keeps offers whose total does not exceed max, preserving
// provider order. Offers without a readable total are dropped. A
// non-positive max disables the filter.
func FilterByBudget(offers []Offer, max float64) []Offer {
	if max <= 0 {
		return offers
	}
	out := make([]Offer, 0, len(offers))
	for _, o := range offers {
		if total, ok := o.Total(); ok && total <= max {
			out = append(out, o)
		}
	}
	return out
}

// ExtractFlight projects the first segment of an offer into the response
// shape. ok is false when the offer carries no segment.
func ExtractFlight(o Offer, origin, destination string) (model.Flight, bool) {
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return model.Flight{}, false
	}
	seg := o.Itineraries[0].Segments[0]
	depDate, depTime := splitTimestamp(seg.Departure.At)
	arrDate, arrTime := splitTimestamp(seg.Arrival.At)
	return model.Flight{
		Origin:        origin,
		Destination:   destination,
		DepartureTime: depTime,
		DepartureDate: depDate,
		ArrivalTime:   arrTime,
		ArrivalDate:   arrDate,
		Duration:      FormatDuration(o.Itineraries[0].Duration),
		Airline:       seg.CarrierCode,
		Nonstop:       true,
	}, true
}

// splitTimestamp turns "2026-02-06T14:55:00" into ("2026-02-06", "14:55").
func splitTimestamp(at string) (date, clock string) {
	date, rest, found := strings.Cut(at, "T")
	if !found {
		return at, ""
	}
	if len(rest) > 5 {
		rest = rest[:5]
	}
	return date, rest
}

// PlaceholderFlights is the round trip shown when either leg has no offer.
func PlaceholderFlights() []model.Flight {
	return []model.Flight{
		{
			Origin:        "Hong Kong",
			Destination:   "Osaka",
			DepartureTime: "14:55",
			DepartureDate: "Feb 6",
			ArrivalTime:   "19:20",
			ArrivalDate:   "Feb 6",
			Duration:      "3h25m",
			Airline:       "Cathay Pacific",
			Nonstop:       true,
		},
		{
			Origin:        "Osaka",
			Destination:   "Hong Kong",
			DepartureTime: "09:55",
			DepartureDate: "Feb 12",
			ArrivalTime:   "13:20",
			ArrivalDate:   "Feb 12",
			Duration:      "4h25m",
			Airline:       "HK Express",
			Nonstop:       true,
		},
	}
}
