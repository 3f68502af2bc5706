package handler

import (
    "context"
    "errors"
    "log"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/ai-travel-planner/internal/model"
    "github.com/iliyamo/ai-travel-planner/internal/service"
)

// ItineraryGenerator is the orchestration entry point behind /api/chat.
type ItineraryGenerator interface {
    Generate(ctx context.Context, req model.ChatRequest) (*model.ItineraryResponse, error)
}

// ChatHandler serves the main trip generation endpoint.
type ChatHandler struct {
    Planner ItineraryGenerator
}

func NewChatHandler(p ItineraryGenerator) *ChatHandler { return &ChatHandler{Planner: p} }

// Chat runs one generation.  The agent can take minutes, so no extra
// timeout is layered over the request context.  Validation problems map to
// 400; agent and parse failures map to 500 with the error text.
func (h *ChatHandler) Chat(c echo.Context) error {
    var req model.ChatRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
    }
    if req.TravelInfo != nil {
        log.Printf("chat: request_id=%q destination=%q revision=%t", req.RequestID, req.TravelInfo.Destination, req.Revision())
    }

    resp, err := h.Planner.Generate(c.Request().Context(), req)
    if err != nil {
        if errors.Is(err, service.ErrInvalidRequest) {
            return c.JSON(http.StatusBadRequest, echo.Map{"detail": err.Error()})
        }
        log.Printf("chat: generation failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": err.Error()})
    }
    return c.JSON(http.StatusOK, resp)
}
