package repository

import (
	"context"      // context carries deadlines to DB operations
	"database/sql" // sql provides generic database operations
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/ai-travel-planner/internal/model"
)

// PlanRepo encapsulates all database queries related to saved plans. Every
// read and write that targets a single plan is scoped by (id, user_id).
type PlanRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewPlanRepo constructs a PlanRepo with the provided DB handle.
func NewPlanRepo(db *sql.DB) *PlanRepo {
	return &PlanRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const planColumns = "id, user_id, title, destination, departure, num_days, num_people, budget, start_date, end_date, plan_data, created_at, updated_at"

// Create stores a new plan for userID. The listing columns are copied out
// of payload and the whole payload is stored serialized.
func (r *PlanRepo) Create(ctx context.Context, userID string, payload map[string]any) (*model.SavedPlan, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode plan payload: %w", err)
	}
	now := r.now()
	p := &model.SavedPlan{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       str(payload, "title"),
		Destination: str(payload, "destination"),
		Departure:   str(payload, "departure"),
		NumDays:     int(num(payload, "num_days")),
		NumPeople:   int(num(payload, "num_people")),
		Budget:      num(payload, "budget"),
		StartDate:   str(payload, "start_date"),
		EndDate:     str(payload, "end_date"),
		PlanData:    raw,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const q = "INSERT INTO travel_plans (" + planColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.Title, p.Destination, p.Departure, p.NumDays, p.NumPeople,
		p.Budget, p.StartDate, p.EndDate, string(raw), p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByUser returns the user's plans, newest first. A user with no plans
// gets an empty, non-nil slice.
func (r *PlanRepo) ListByUser(ctx context.Context, userID string) ([]model.SavedPlan, error) {
	const q = "SELECT " + planColumns + " FROM travel_plans WHERE user_id = ? ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []model.SavedPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// GetByIDAndUser fetches one plan. ErrPlanNotFound covers both a missing
// id and an id owned by another user.
func (r *PlanRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*model.SavedPlan, error) {
	const q = "SELECT " + planColumns + " FROM travel_plans WHERE id = ? AND user_id = ?"
	p, err := scanPlan(r.db.QueryRowContext(ctx, q, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	return p, err
}

// DeleteByIDAndUser removes one plan owned by userID.
func (r *PlanRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM travel_plans WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// Update replaces the title and the stored payload of a plan owned by
// userID. An empty title leaves the current title in place; a nil payload
// leaves the stored payload in place.
func (r *PlanRepo) Update(ctx context.Context, id, userID, title string, payload map[string]any) error {
	var planData sql.NullString
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode plan payload: %w", err)
		}
		planData = sql.NullString{String: string(raw), Valid: true}
	}
	const q = `UPDATE travel_plans
		SET title = CASE WHEN ? = '' THEN title ELSE ? END,
		    plan_data = COALESCE(?, plan_data),
		    updated_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q, title, title, planData, r.now(), id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlanNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(s rowScanner) (*model.SavedPlan, error) {
	var (
		p        model.SavedPlan
		planData sql.NullString
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Title, &p.Destination, &p.Departure, &p.NumDays,
		&p.NumPeople, &p.Budget, &p.StartDate, &p.EndDate, &planData, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.PlanData = decodePlanData(planData)
	return &p, nil
}

// decodePlanData returns the stored payload as JSON. A payload that is not
// valid JSON is returned as a JSON string holding the raw text.
func decodePlanData(s sql.NullString) json.RawMessage {
	if !s.Valid || s.String == "" {
		return json.RawMessage("null")
	}
	if json.Valid([]byte(s.String)) {
		return json.RawMessage(s.String)
	}
	b, _ := json.Marshal(s.String)
	return b
}

func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func num(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}
