// Package itinerary turns the agent's text answer into a typed trip plan.
package itinerary

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Document is the plan the agent is asked to return as JSON.
type Document struct {
	TripOverview    Overview        `json:"trip_overview"`
	Accommodation   []Accommodation `json:"accommodation"`
	DailyItinerary  []DayPlan       `json:"daily_itinerary"`
	BudgetBreakdown Budget          `json:"budget_breakdown"`
}

type Overview struct {
	Title       string `json:"title"`
	Destination string `json:"destination"`
	Summary     string `json:"summary"`
}

type Accommodation struct {
	Name             string   `json:"name"`
	Link             string   `json:"link"`
	Address          string   `json:"address"`
	Rating           Number   `json:"rating"`
	ReviewCount      Number   `json:"review_count"`
	PricePerNightHKD Number   `json:"price_per_night_hkd"`
	Amenities        []string `json:"amenities"`
}

// DayPlan holds the ordered activities of one day. Days are expected to be
// numbered 1..n but the agent output is trusted as-is.
type DayPlan struct {
	Day        int        `json:"day"`
	Activities []Activity `json:"activities"`
}

type Activity struct {
	ActivityName string `json:"activity_name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Address      string `json:"address"`
	CostHKD      Number `json:"cost_hkd"`
	Transport    string `json:"transport"`
}

type Budget struct {
	AccommodationTotalHKD Number `json:"accommodation_total_hkd"`
	ActivitiesTotalHKD    Number `json:"activities_total_hkd"`
	TransportTotalHKD     Number `json:"transport_total_hkd"`
	FoodTotalHKD          Number `json:"food_total_hkd"`
	RemainingBudgetHKD    Number `json:"remaining_budget_hkd"`
}

// Number accepts a JSON number or a numeric string such as "1,200" or
// "HKD 350". Unparseable strings decode to zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*n = 0
		return nil
	}
	if s[0] != '"' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*n = Number(f)
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	raw = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 { return float64(n) }
func (n Number) Int() int       { return int(n) }
