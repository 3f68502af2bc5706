// Package service orchestrates one itinerary request end to end: agent
// run, parsing, enrichment with flights and photos, and progress updates.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/iliyamo/ai-travel-planner/internal/agent"
	"github.com/iliyamo/ai-travel-planner/internal/itinerary"
	"github.com/iliyamo/ai-travel-planner/internal/model"
	"github.com/iliyamo/ai-travel-planner/internal/progress"
	"github.com/iliyamo/ai-travel-planner/internal/provider/airbnb"
	"github.com/iliyamo/ai-travel-planner/internal/provider/flights"
	"github.com/iliyamo/ai-travel-planner/internal/queue"
)

const (
	Currency = "HKD"
	// PriceMultiplier converts the provider's flight totals into the
	// response currency figure.
	PriceMultiplier = 9
)

var (
	ErrInvalidRequest = errors.New("invalid travel request")
	ErrAgent          = errors.New("agent run failed")
)

// Dates arrive in the browser's toDateString layout or as ISO dates.
var dateLayouts = []string{"Mon Jan 02 2006", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrInvalidRequest, s)
}

type FlightSearcher interface {
	RoundTrip(ctx context.Context, q flights.RoundTripQuery) (outbound, inbound flights.SearchResult)
}

type PhotoFinder interface {
	PhotoURL(ctx context.Context, name string) (string, bool)
}

type ImageScraper interface {
	FirstImage(ctx context.Context, url string) string
}

// FlightSource tells whether the flights in a response came from the
// provider or are the fixed placeholder pair.
type FlightSource int

const (
	FlightsReal FlightSource = iota
	FlightsPlaceholder
)

// FlightChoice is the round trip picked for a response.
type FlightChoice struct {
	Source  FlightSource
	Flights []model.Flight
	// Total is the sum of both offer prices; zero for placeholders.
	Total float64
}

// Deps wires a Planner. Progress and Events may be nil.
type Deps struct {
	Runner   agent.Runner
	Flights  FlightSearcher
	Photos   PhotoFinder
	Scraper  ImageScraper
	Progress *progress.Registry
	Events   Publisher
	// Pacing is the pause between progress steps.
	Pacing time.Duration
}

// previousTTL bounds how long an agent output stays available for a
// revision under the same request id.
const previousTTL = 6 * time.Hour

// Planner is safe for concurrent use. It remembers the last agent output
// per request id so a revision can build on it.
type Planner struct {
	Deps

	previous *gocache.Cache
}

func NewPlanner(d Deps) *Planner {
	return &Planner{Deps: d, previous: gocache.New(previousTTL, 30*time.Minute)}
}

// Generate runs the whole pipeline for one chat turn. Provider shortfalls
// degrade to placeholders; agent and parse failures are returned and
// reported on the progress stream.
func (p *Planner) Generate(ctx context.Context, req model.ChatRequest) (*model.ItineraryResponse, error) {
	info, start, end, err := validate(req)
	if err != nil {
		return nil, err
	}
	id := req.RequestID

	p.emit(id, progress.Info, "🤖 Create an AI travel agent")
	raw, err := p.runAgent(ctx, req, info)
	if err != nil {
		p.emit(id, progress.Error, err.Error())
		return nil, err
	}
	parsed := itinerary.Parse(raw)
	if !parsed.OK() {
		log.Printf("planner: agent output rejected: %v", parsed.Err)
		p.emit(id, progress.Error, parsed.Err.Error())
		return nil, parsed.Err
	}
	p.remember(id, raw)
	doc := parsed.Document

	p.emit(id, progress.Info, "Identifying the best possible route")
	p.pause(ctx)
	p.emit(id, progress.Detail, fmt.Sprintf("%d full days to explore %s's iconic spots and hidden gems.", info.NumDays, info.Destination))

	resp := &model.ItineraryResponse{
		TripOverview:   p.overview(ctx, doc, info),
		DailyItinerary: p.daily(ctx, doc),
	}

	p.pause(ctx)
	p.emit(id, progress.Info, "Searching for flights")
	choice := p.pickFlights(ctx, info, start, end)
	resp.Flights = choice.Flights
	p.emit(id, progress.Detail, fmt.Sprintf("Direct flights from %s to %s take about %s each way.",
		info.Departure, info.Destination, choice.Flights[0].Duration))

	p.pause(ctx)
	p.emit(id, progress.Info, "Searching for hotels")
	resp.Hotels = p.hotels(ctx, doc)
	resp.PriceSummary = PriceSummaryFor(choice, doc.BudgetBreakdown, info.Budget)

	p.pause(ctx)
	p.emit(id, progress.Info, "Creating an itinerary")
	p.pause(ctx)
	p.emit(id, progress.Detail, fmt.Sprintf("I've focused on %s's iconic highlights perfect for your short visit.", info.Destination))
	p.emit(id, progress.Detail, "I made sure to include must-see attractions for that iconic experience!")
	p.pause(ctx)
	p.emit(id, progress.Success, "Trip Generated!")

	p.publishGenerated(ctx, req, info, choice, resp.PriceSummary)
	return resp, nil
}

func validate(req model.ChatRequest) (*model.TravelInfo, time.Time, time.Time, error) {
	info := req.TravelInfo
	if info == nil {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("%w: travel_info is required", ErrInvalidRequest)
	}
	var missing []string
	if strings.TrimSpace(info.Destination) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(info.Departure) == "" {
		missing = append(missing, "departure")
	}
	if info.NumDays <= 0 {
		missing = append(missing, "num_days")
	}
	if info.NumPeople <= 0 {
		missing = append(missing, "num_people")
	}
	if info.StartDate == "" {
		missing = append(missing, "start_date")
	}
	if info.EndDate == "" {
		missing = append(missing, "end_date")
	}
	if len(missing) > 0 {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	start, err := parseDate(info.StartDate)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	end, err := parseDate(info.EndDate)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	return info, start, end, nil
}

func (p *Planner) runAgent(ctx context.Context, req model.ChatRequest, info *model.TravelInfo) (string, error) {
	in := agent.PromptInput{
		Destination: info.Destination,
		NumDays:     info.NumDays,
		NumPeople:   info.NumPeople,
		Budget:      int(info.Budget),
		Vibes:       req.Vibe,
	}
	var (
		prompt string
		err    error
	)
	previous, ok := p.previousOutput(req.RequestID)
	switch {
	case req.Revision() && ok:
		in.NewRequirements = req.NewRequirements()
		in.PreviousOutput = previous
		prompt, err = agent.PromptRevise(in)
	case req.Revision():
		log.Printf("planner: no earlier output for request %q, planning from scratch", req.RequestID)
		prompt, err = agent.PromptFresh(in)
	default:
		prompt, err = agent.PromptFresh(in)
	}
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	began := time.Now()
	out, err := p.Runner.Run(ctx, prompt)
	if err != nil {
		log.Printf("planner: agent run failed after %s: %v", time.Since(began).Round(time.Millisecond), err)
		return "", fmt.Errorf("%w: %v", ErrAgent, err)
	}
	log.Printf("planner: agent answered in %s (%d bytes)", time.Since(began).Round(time.Millisecond), len(out))
	return out, nil
}

// previousOutput returns the output stored under id.  Outputs never cross
// request ids, and an empty id has none.
func (p *Planner) previousOutput(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	v, ok := p.previous.Get(id)
	if !ok {
		return "", false
	}
	out, ok := v.(string)
	return out, ok
}

func (p *Planner) remember(id, out string) {
	if id != "" {
		p.previous.SetDefault(id, out)
	}
}

func (p *Planner) overview(ctx context.Context, doc *itinerary.Document, info *model.TravelInfo) model.TripOverview {
	ov := doc.TripOverview
	img, _ := p.photo(ctx, ov.Destination)
	return model.TripOverview{
		Title:       ov.Title,
		ImageURL:    img,
		Location:    ov.Destination,
		DateRange:   info.StartDate + " - " + info.EndDate,
		Description: ov.Summary,
	}
}

func (p *Planner) daily(ctx context.Context, doc *itinerary.Document) []model.DailyItineraryEntry {
	var out []model.DailyItineraryEntry
	for _, day := range doc.DailyItinerary {
		for _, act := range day.Activities {
			img, _ := p.photo(ctx, act.Address)
			out = append(out, model.DailyItineraryEntry{
				Day: day.Day,
				Itinerary: model.DailyItinerary{
					StartTime: act.StartTime,
					EndTime:   act.EndTime,
					Activity:  act.ActivityName,
					ImageURL:  img,
				},
			})
		}
	}
	if out == nil {
		out = []model.DailyItineraryEntry{}
	}
	return out
}

func (p *Planner) photo(ctx context.Context, name string) (string, bool) {
	if p.Photos == nil || strings.TrimSpace(name) == "" {
		return "", false
	}
	return p.Photos.PhotoURL(ctx, name)
}

// pickFlights takes the first offer of each leg in provider order. If
// either leg has none, the placeholder pair is used.
func (p *Planner) pickFlights(ctx context.Context, info *model.TravelInfo, start, end time.Time) FlightChoice {
	placeholder := FlightChoice{Source: FlightsPlaceholder, Flights: flights.PlaceholderFlights()}
	if p.Flights == nil {
		return placeholder
	}
	out, in := p.Flights.RoundTrip(ctx, flights.RoundTripQuery{
		Departure:   strings.ToLower(info.Departure),
		Destination: strings.ToLower(info.Destination),
		People:      info.NumPeople,
		Budget:      info.Budget,
		OutboundOn:  start.Format("2006-01-02"),
		ReturnOn:    end.Format("2006-01-02"),
	})
	first, ok1 := out.First()
	second, ok2 := in.First()
	if !ok1 || !ok2 {
		log.Printf("planner: using placeholder flights (outbound %s, inbound %s)", out.Outcome, in.Outcome)
		return placeholder
	}
	f1, ok1 := flights.ExtractFlight(first, info.Departure, info.Destination)
	f2, ok2 := flights.ExtractFlight(second, info.Destination, info.Departure)
	if !ok1 || !ok2 {
		log.Printf("planner: using placeholder flights (offer without segments)")
		return placeholder
	}
	t1, ok1 := first.Total()
	t2, ok2 := second.Total()
	if !ok1 || !ok2 {
		log.Printf("planner: using placeholder flights (unreadable price %q / %q)", first.Price.Total, second.Price.Total)
		return placeholder
	}
	return FlightChoice{Source: FlightsReal, Flights: []model.Flight{f1, f2}, Total: t1 + t2}
}

func (p *Planner) hotels(ctx context.Context, doc *itinerary.Document) []model.Hotel {
	out := make([]model.Hotel, 0, len(doc.Accommodation))
	for _, acc := range doc.Accommodation {
		img := ""
		if p.Scraper != nil && airbnb.IsListing(acc.Link) {
			img = p.Scraper.FirstImage(ctx, acc.Link)
		}
		amenities := acc.Amenities
		if amenities == nil {
			amenities = []string{}
		}
		out = append(out, model.Hotel{
			Name:          acc.Name,
			ImageURL:      img,
			Rating:        acc.Rating.Float(),
			ReviewCount:   acc.ReviewCount.Int(),
			PricePerNight: acc.PricePerNightHKD.Int(),
			Currency:      Currency,
			Address:       acc.Address,
			Amenities:     amenities,
			Link:          acc.Link,
		})
	}
	return out
}

// PriceSummaryFor totals the response. Flight totals only count real
// offers; hotel and grand totals come from the agent's budget breakdown.
func PriceSummaryFor(choice FlightChoice, b itinerary.Budget, budget float64) model.PriceSummary {
	flightsTotal := 0
	if choice.Source == FlightsReal {
		flightsTotal = int(choice.Total) * PriceMultiplier
	}
	return model.PriceSummary{
		FlightsTotal: flightsTotal,
		HotelsTotal:  b.AccommodationTotalHKD.Int(),
		GrandTotal:   int(budget - b.RemainingBudgetHKD.Float()),
		Currency:     Currency,
	}
}

func (p *Planner) emit(id string, t progress.Type, msg string) {
	if p.Progress == nil || id == "" {
		return
	}
	p.Progress.Emit(id, t, msg)
}

func (p *Planner) pause(ctx context.Context) {
	if p.Pacing <= 0 {
		return
	}
	t := time.NewTimer(p.Pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (p *Planner) publishGenerated(ctx context.Context, req model.ChatRequest, info *model.TravelInfo, choice FlightChoice, price model.PriceSummary) {
	if p.Events == nil {
		return
	}
	ev := queue.ItineraryGeneratedEvent{
		RequestID:   req.RequestID,
		Destination: info.Destination,
		Departure:   info.Departure,
		NumDays:     info.NumDays,
		NumPeople:   info.NumPeople,
		Revision:    req.Revision(),
		FlightsReal: choice.Source == FlightsReal,
		GrandTotal:  price.GrandTotal,
		Currency:    price.Currency,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.Events.Publish(ctx, queue.ItineraryGeneratedQueue, ev); err != nil {
		log.Printf("planner: publish %s: %v", queue.ItineraryGeneratedQueue, err)
	}
}
