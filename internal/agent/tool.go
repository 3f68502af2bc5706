// Package agent runs the itinerary-writing LLM with external tools.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/ai-travel-planner/internal/provider/social"
)

// Tool is one function the model may call. Parameters is a JSON schema
// object describing the arguments.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Invoke      func(ctx context.Context, args map[string]any) (string, error)
}

// ToolSource yields tools for the duration of one run. The returned close
// function releases whatever backs the tools.
type ToolSource interface {
	Open(ctx context.Context) ([]Tool, func() error, error)
}

// SearchSource exposes web search as the google_search tool.
type SearchSource struct {
	Search *social.Search
}

func (s SearchSource) Open(context.Context) ([]Tool, func() error, error) {
	if !s.Search.Enabled() {
		return nil, func() error { return nil }, nil
	}
	tool := Tool{
		Name:        "google_search",
		Description: "Search the web for current travel information. Returns a JSON list of results with title, link and snippet.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query":       map[string]any{"type": "string", "description": "The search query."},
				"max_results": map[string]any{"type": "integer", "description": "Number of results, 1 to 10. Defaults to 5."},
			},
			"required": []string{"query"},
		},
		Invoke: s.invoke,
	}
	return []Tool{tool}, func() error { return nil }, nil
}

func (s SearchSource) invoke(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return "", fmt.Errorf("query is required")
	}
	n := 5
	if v, ok := args["max_results"].(float64); ok && v > 0 {
		n = int(v)
	}
	hits, err := s.Search.Query(ctx, query, n)
	if err != nil {
		return "", err
	}
	type result struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	}
	out := make([]result, 0, len(hits))
	for _, h := range hits {
		out = append(out, result{Title: h.Title, Link: h.Link, Snippet: h.Snippet})
	}
	b, err := json.Marshal(out)
	return string(b), err
}
