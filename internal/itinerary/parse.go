package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is the root of every parse failure.
var ErrMalformed = errors.New("malformed itinerary")

// ParseError names the field that could not be read.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed itinerary: %s", e.Reason)
	}
	return fmt.Sprintf("malformed itinerary: %s: %s", e.Field, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrMalformed }

// Result is either a parsed Document or the reason parsing failed.
type Result struct {
	Document *Document
	Err      error
}

func (r Result) OK() bool { return r.Err == nil && r.Document != nil }

func failed(field, reason string) Result {
	return Result{Err: &ParseError{Field: field, Reason: reason}}
}

// required top-level keys and the nested keys each one must carry.
var required = []struct {
	key    string
	nested []string
}{
	{"trip_overview", []string{"title", "destination", "summary"}},
	{"daily_itinerary", nil},
	{"accommodation", nil},
	{"budget_breakdown", []string{"accommodation_total_hkd", "remaining_budget_hkd"}},
}

// Parse reads the agent's answer. The JSON object may be wrapped in a
// markdown code fence or surrounded by prose.
func Parse(raw string) Result {
	body, ok := extractObject(raw)
	if !ok {
		return failed("", "no JSON object in agent output")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &top); err != nil {
		return failed("", err.Error())
	}
	for _, req := range required {
		v, ok := top[req.key]
		if !ok || string(v) == "null" {
			return failed(req.key, "missing")
		}
		if len(req.nested) == 0 {
			continue
		}
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(v, &inner); err != nil {
			return failed(req.key, "not an object")
		}
		for _, k := range req.nested {
			if _, ok := inner[k]; !ok {
				return failed(req.key+"."+k, "missing")
			}
		}
	}

	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return failed("", err.Error())
	}
	for i, d := range doc.DailyItinerary {
		if d.Activities == nil {
			return failed(fmt.Sprintf("daily_itinerary[%d].activities", i), "missing")
		}
	}
	return Result{Document: &doc}
}

func extractObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
