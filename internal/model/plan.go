package model

import (
	"encoding/json"
	"time"
)

// SavedPlan represents a row in the `travel_plans` table. The scalar
// columns are copied out of the saved payload for listing; PlanData holds
// the full payload exactly as the client sent it.
//
// Fields:
//  ID         – travel_plans.id (uuid).
//  UserID     – verified identity-provider subject of the owner.
//  Title      – display title.
//  Destination, Departure, NumDays, NumPeople, Budget, StartDate, EndDate
//             – trip parameters at the time of saving.
//  PlanData   – the serialized payload; decoded JSON when valid, otherwise
//               the raw stored string.
//  CreatedAt  – creation timestamp (UTC).
//  UpdatedAt  – last update timestamp (UTC).
type SavedPlan struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Destination string          `json:"destination"`
	Departure   string          `json:"departure"`
	NumDays     int             `json:"num_days"`
	NumPeople   int             `json:"num_people"`
	Budget      float64         `json:"budget"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	PlanData    json.RawMessage `json:"plan_data"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
