package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/ai-travel-planner/internal/middleware"
    "github.com/iliyamo/ai-travel-planner/internal/model"
    "github.com/iliyamo/ai-travel-planner/internal/queue"
    "github.com/iliyamo/ai-travel-planner/internal/repository"
    "github.com/iliyamo/ai-travel-planner/internal/service"
)

// PlanStore is the subset of repository.PlanRepo the handlers use.
type PlanStore interface {
    Create(ctx context.Context, userID string, payload map[string]any) (*model.SavedPlan, error)
    ListByUser(ctx context.Context, userID string) ([]model.SavedPlan, error)
    GetByIDAndUser(ctx context.Context, id, userID string) (*model.SavedPlan, error)
    DeleteByIDAndUser(ctx context.Context, id, userID string) error
    Update(ctx context.Context, id, userID, title string, payload map[string]any) error
}

// PlansHandler bundles dependencies for saved-plan endpoints.  Every route
// sits behind BearerAuth, so a user id is always present; the checks below
// only guard against mis-wiring.
type PlansHandler struct {
    Plans  PlanStore
    Events service.Publisher
}

func NewPlansHandler(p PlanStore, ev service.Publisher) *PlansHandler {
    return &PlansHandler{Plans: p, Events: ev}
}

type updatePlanReq struct {
    Title    string         `json:"title"`
    PlanData map[string]any `json:"plan_data"`
}

// Save stores the posted plan payload for the caller.
func (h *PlansHandler) Save(c echo.Context) error {
    uid := middleware.UserID(c)
    if uid == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
    }
    var payload map[string]any
    if err := c.Bind(&payload); err != nil || payload == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    plan, err := h.Plans.Create(ctx, uid, payload)
    if err != nil {
        log.Printf("plans: save failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "failed to save plan"})
    }
    h.publishSaved(c.Request().Context(), plan)

    return c.JSON(http.StatusOK, echo.Map{
        "success": true,
        "message": "Plan saved successfully",
        "plan_id": plan.ID,
    })
}

// List returns the caller's plans, newest first.
func (h *PlansHandler) List(c echo.Context) error {
    uid := middleware.UserID(c)
    if uid == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    plans, err := h.Plans.ListByUser(ctx, uid)
    if err != nil {
        log.Printf("plans: list failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "failed to load plans"})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "plans": plans})
}

// Get returns one plan.  Plans owned by someone else are reported as not
// found.
func (h *PlansHandler) Get(c echo.Context) error {
    uid := middleware.UserID(c)
    if uid == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    plan, err := h.Plans.GetByIDAndUser(ctx, c.Param("id"), uid)
    if err != nil {
        return planError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "plan": plan})
}

// Update changes the title and/or payload of one plan.
func (h *PlansHandler) Update(c echo.Context) error {
    uid := middleware.UserID(c)
    if uid == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
    }
    var req updatePlanReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
    }
    if req.Title == "" && req.PlanData == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "nothing to update"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Plans.Update(ctx, c.Param("id"), uid, req.Title, req.PlanData); err != nil {
        return planError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Plan updated successfully"})
}

// Delete removes one plan owned by the caller.
func (h *PlansHandler) Delete(c echo.Context) error {
    uid := middleware.UserID(c)
    if uid == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Plans.DeleteByIDAndUser(ctx, c.Param("id"), uid); err != nil {
        return planError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Plan deleted successfully"})
}

func planError(c echo.Context, err error) error {
    if errors.Is(err, repository.ErrPlanNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"detail": "Plan not found"})
    }
    log.Printf("plans: %v", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "internal error"})
}

func (h *PlansHandler) publishSaved(ctx context.Context, p *model.SavedPlan) {
    if h.Events == nil {
        return
    }
    ev := queue.PlanSavedEvent{
        PlanID:      p.ID,
        UserID:      p.UserID,
        Title:       p.Title,
        Destination: p.Destination,
        NumDays:     p.NumDays,
        Budget:      p.Budget,
        SavedAt:     p.CreatedAt.Format(time.RFC3339),
    }
    if err := h.Events.Publish(ctx, queue.PlanSavedQueue, ev); err != nil {
        log.Printf("plans: publish %s: %v", queue.PlanSavedQueue, err)
    }
}
