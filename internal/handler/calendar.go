package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/ai-travel-planner/internal/calendar"
)

type calendarReq struct {
    Itinerary string `json:"itinerary"`
    StartDate string `json:"start_date"`
}

// DownloadCalendar renders the itinerary text as an .ics attachment.
func DownloadCalendar(c echo.Context) error {
    var req calendarReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
    }
    if strings.TrimSpace(req.Itinerary) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Missing itinerary data"})
    }

    now := time.Now()
    start := calendar.ParseStart(req.StartDate, now)
    body := calendar.Generate(req.Itinerary, start, now)

    c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+calendar.Filename+`"`)
    return c.Blob(http.StatusOK, "text/calendar", body)
}
