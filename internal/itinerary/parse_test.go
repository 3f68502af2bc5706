package itinerary

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/osaka.json")
	require.NoError(t, err)
	return string(b)
}

func TestParseDocument(t *testing.T) {
	res := Parse(sample(t))
	require.True(t, res.OK(), "%v", res.Err)

	doc := res.Document
	assert.Equal(t, "Osaka", doc.TripOverview.Destination)
	require.Len(t, doc.DailyItinerary, 2)
	assert.Equal(t, 1, doc.DailyItinerary[0].Day)
	assert.Equal(t, "Osaka Castle", doc.DailyItinerary[0].Activities[0].ActivityName)
	assert.Equal(t, 650, doc.Accommodation[0].PricePerNightHKD.Int())
	assert.Equal(t, 1600.0, doc.BudgetBreakdown.RemainingBudgetHKD.Float())
}

func TestParseFencedOutput(t *testing.T) {
	raw := "Here is your plan:\n```json\n" + sample(t) + "\n```\nEnjoy!"
	res := Parse(raw)
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, "Osaka in Three Days", res.Document.TripOverview.Title)
}

func TestParseMissingKey(t *testing.T) {
	raw := strings.Replace(sample(t), `"budget_breakdown"`, `"budget"`, 1)
	res := Parse(raw)
	assert.False(t, res.OK())

	var pe *ParseError
	require.True(t, errors.As(res.Err, &pe))
	assert.Equal(t, "budget_breakdown", pe.Field)
	assert.ErrorIs(t, res.Err, ErrMalformed)
}

func TestParseMissingNestedKey(t *testing.T) {
	raw := strings.Replace(sample(t), `"remaining_budget_hkd"`, `"left"`, 1)
	res := Parse(raw)
	var pe *ParseError
	require.True(t, errors.As(res.Err, &pe))
	assert.Equal(t, "budget_breakdown.remaining_budget_hkd", pe.Field)
}

func TestParseNotJSON(t *testing.T) {
	res := Parse("Sorry, I could not reach the accommodation service.")
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, ErrMalformed)

	res = Parse("{not json}")
	assert.ErrorIs(t, res.Err, ErrMalformed)
}
