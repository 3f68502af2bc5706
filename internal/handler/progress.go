package handler

import (
    "encoding/json"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/ai-travel-planner/internal/progress"
)

// ProgressHandler streams progress events as server-sent events.
type ProgressHandler struct {
    Registry *progress.Registry
}

func NewProgressHandler(r *progress.Registry) *ProgressHandler { return &ProgressHandler{Registry: r} }

// Stream opens the channel for :request_id and writes one `data:` frame
// per event until the client disconnects.  Connecting again with the same
// id ends the earlier stream.
func (h *ProgressHandler) Stream(c echo.Context) error {
    id := c.Param("request_id")
    ctx := c.Request().Context()
    events := h.Registry.Subscribe(ctx, id)

    w := c.Response()
    w.Header().Set(echo.HeaderContentType, "text/event-stream")
    w.Header().Set(echo.HeaderCacheControl, "no-cache")
    w.Header().Set(echo.HeaderConnection, "keep-alive")
    w.Header().Set("X-Accel-Buffering", "no")
    w.WriteHeader(http.StatusOK)
    w.Flush()

    for ev := range events {
        b, err := json.Marshal(ev)
        if err != nil {
            continue
        }
        if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
            return nil
        }
        w.Flush()
    }
    return nil
}
