package model

// TravelInfo is the trip block sent by the front end with every chat turn.
// Dates use the browser's Date.toDateString() layout ("Fri Feb 06 2026")
// but ISO dates are accepted too.
//
// Fields:
//  Destination – city the traveller wants to visit.
//  Departure   – city the traveller leaves from.
//  NumDays     – number of days (> 0).
//  NumPeople   – number of travellers (> 0).
//  Budget      – total budget in HKD.
//  StartDate   – first day of the trip.
//  EndDate     – last day of the trip.
type TravelInfo struct {
	Destination string  `json:"destination"`
	Departure   string  `json:"departure"`
	NumDays     int     `json:"num_days"`
	NumPeople   int     `json:"num_people"`
	Budget      float64 `json:"budget"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
}

// ChatMessage is one entry of the optional chat history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat. FirstCompleteFlag is 0 for a
// fresh plan and non-zero when the user is revising the previous plan.
type ChatRequest struct {
	Message           string        `json:"message"`
	Vibe              []string      `json:"vibe,omitempty"`
	ChatHistory       []ChatMessage `json:"chat_history,omitempty"`
	TravelInfo        *TravelInfo   `json:"travel_info,omitempty"`
	RequestID         string        `json:"request_id,omitempty"`
	FirstCompleteFlag int           `json:"first_complete_flag"`
}

// Revision reports whether the request asks to revise an existing plan.
func (r ChatRequest) Revision() bool { return r.FirstCompleteFlag != 0 }

// NewRequirements returns the free-text requirement for a revision: the
// last history entry when it came from the user, otherwise the message.
func (r ChatRequest) NewRequirements() string {
	if n := len(r.ChatHistory); n > 0 && r.ChatHistory[n-1].Role == "user" {
		return r.ChatHistory[n-1].Content
	}
	return r.Message
}

type TripOverview struct {
	Title       string `json:"title"`
	ImageURL    string `json:"image_url"`
	Location    string `json:"location"`
	DateRange   string `json:"date_range"`
	Description string `json:"description"`
}

type DailyItinerary struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Activity  string `json:"activity"`
	ImageURL  string `json:"image_url"`
}

// DailyItineraryEntry pairs an activity with the day it belongs to.
type DailyItineraryEntry struct {
	Day       int            `json:"day"`
	Itinerary DailyItinerary `json:"itinerary"`
}

type Flight struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
	DepartureDate string `json:"departure_date"`
	ArrivalTime   string `json:"arrival_time"`
	ArrivalDate   string `json:"arrival_date"`
	Duration      string `json:"duration"`
	Airline       string `json:"airline"`
	Nonstop       bool   `json:"nonstop"`
}

type Hotel struct {
	Name          string   `json:"name"`
	ImageURL      string   `json:"image_url"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
	PricePerNight int      `json:"price_per_night"`
	Currency      string   `json:"currency"`
	Address       string   `json:"address"`
	Amenities     []string `json:"amenities"`
	Link          string   `json:"link"`
}

type PriceSummary struct {
	FlightsTotal int    `json:"flights_total"`
	HotelsTotal  int    `json:"hotels_total"`
	GrandTotal   int    `json:"grand_total"`
	Currency     string `json:"currency"`
}

// ItineraryResponse is the full answer to a chat turn. AIResponse is always
// blank; the raw agent text stays on the server.
type ItineraryResponse struct {
	AIResponse     string                `json:"ai_response"`
	TripOverview   TripOverview          `json:"trip_overview"`
	DailyItinerary []DailyItineraryEntry `json:"daily_itinerary"`
	Flights        []Flight              `json:"flights"`
	Hotels         []Hotel               `json:"hotels"`
	PriceSummary   PriceSummary          `json:"price_summary"`
}
