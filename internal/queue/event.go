// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// Queue names. Each event type travels on its own durable queue.
const (
    PlanSavedQueue           = "plan.saved"
    ItineraryGeneratedQueue  = "itinerary.generated"
)

// Queues lists every queue the consumer listens on.
var Queues = []string{PlanSavedQueue, ItineraryGeneratedQueue}

// PlanSavedEvent is published after a user saves a plan. It carries enough
// information for downstream consumers to log or notify without querying
// the plan store.
type PlanSavedEvent struct {
    PlanID      string  `json:"plan_id"`
    UserID      string  `json:"user_id"`
    Title       string  `json:"title"`
    Destination string  `json:"destination"`
    NumDays     int     `json:"num_days"`
    Budget      float64 `json:"budget"`
    SavedAt     string  `json:"saved_at"`
}

// ItineraryGeneratedEvent is published when a chat request produced a
// complete itinerary response.
type ItineraryGeneratedEvent struct {
    RequestID   string `json:"request_id,omitempty"`
    Destination string `json:"destination"`
    Departure   string `json:"departure"`
    NumDays     int    `json:"num_days"`
    NumPeople   int    `json:"num_people"`
    Revision    bool   `json:"revision"`
    FlightsReal bool   `json:"flights_real"`
    GrandTotal  int    `json:"grand_total"`
    Currency    string `json:"currency"`
    GeneratedAt string `json:"generated_at"`
}
