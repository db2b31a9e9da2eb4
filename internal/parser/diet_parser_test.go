package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-rag/internal/models"
)

func assertDayUnspecified(t *testing.T, plan models.DietPlan, day int) {
	t.Helper()
	assert.Equal(t, models.NewDayPlan(), *plan.Day(day), "day %d", day)
}

func TestParseDietPlan_FencedJSON(t *testing.T) {
	resp := ParseDietPlan("```json\n{\"day1\":{\"breakfast\":\"Idli\"}}\n```", "kerala")

	assert.Equal(t, "kerala", resp.Region)
	assert.Empty(t, resp.Note)
	day1 := resp.DietPlan.Day(1)
	assert.Equal(t, "Idli", day1.Breakfast)
	assert.Equal(t, models.NotSpecified, day1.MorningSnack)
	assert.Equal(t, models.NotSpecified, day1.Lunch)
	assert.Equal(t, models.NotSpecified, day1.EveningSnack)
	assert.Equal(t, models.NotSpecified, day1.Dinner)
	for day := 2; day <= models.DaysInPlan; day++ {
		assertDayUnspecified(t, resp.DietPlan, day)
	}
}

func TestParseDietPlan_JSONWithCommentary(t *testing.T) {
	text := "Here is the plan:\n{\"day3\": {\"dinner\": \"Roti with dal\"}}\nEnjoy your meals!"
	resp := ParseDietPlan(text, "unknown")

	assert.Empty(t, resp.Note)
	assert.Equal(t, "Roti with dal", resp.DietPlan.Day(3).Dinner)
}

func TestParseDietPlan_JSONValueShapes(t *testing.T) {
	text := `{"day1": "rest day", "day2": {"breakfast": 2, "lunch": null, "dinner": true, "evening_snack": ["nuts", "dates"]}}`
	resp := ParseDietPlan(text, "unknown")

	assert.Empty(t, resp.Note)
	assertDayUnspecified(t, resp.DietPlan, 1)
	day2 := resp.DietPlan.Day(2)
	assert.Equal(t, "2", day2.Breakfast)
	assert.Equal(t, models.NotSpecified, day2.Lunch)
	assert.Equal(t, "true", day2.Dinner)
	assert.Equal(t, `["nuts","dates"]`, day2.EveningSnack)
}

func TestParseDietPlan_DayMarkersFallback(t *testing.T) {
	resp := ParseDietPlan("Day 1: Breakfast: Poha. Lunch: Dal rice.", "unknown")

	assert.Equal(t, models.DegradedPlanNote, resp.Note)
	day1 := resp.DietPlan.Day(1)
	assert.Equal(t, "Poha", day1.Breakfast)
	assert.Equal(t, "Dal rice", day1.Lunch)
	assert.Equal(t, models.NotSpecified, day1.MorningSnack)
	assert.Equal(t, models.NotSpecified, day1.Dinner)
	for day := 2; day <= models.DaysInPlan; day++ {
		assertDayUnspecified(t, resp.DietPlan, day)
	}
}

func TestParseDietPlan_MealsStopAtNextLabel(t *testing.T) {
	text := "Day 1:\nBreakfast: Poha\nMorning snack: Fruit\nLunch: Dal\nEvening snack: Sprouts\nDinner: Khichdi\n" +
		"Day 2:\nBreakfast: Upma\nDinner: Roti"
	resp := ParseDietPlan(text, "unknown")

	assert.Equal(t, models.DayPlan{
		Breakfast:    "Poha",
		MorningSnack: "Fruit",
		Lunch:        "Dal",
		EveningSnack: "Sprouts",
		Dinner:       "Khichdi",
	}, *resp.DietPlan.Day(1))
	assert.Equal(t, "Upma", resp.DietPlan.Day(2).Breakfast)
	assert.Equal(t, "Roti", resp.DietPlan.Day(2).Dinner)
	assert.Equal(t, models.NotSpecified, resp.DietPlan.Day(2).Lunch)
}

func TestParseDietPlan_CompactDayMarkers(t *testing.T) {
	resp := ParseDietPlan("day1 breakfast: Oats\nday2 dinner: Khichdi", "unknown")

	assert.Equal(t, models.DegradedPlanNote, resp.Note)
	assert.Equal(t, "Oats", resp.DietPlan.Day(1).Breakfast)
	assert.Equal(t, "Khichdi", resp.DietPlan.Day(2).Dinner)
}

func TestParseDietPlan_LaterDuplicateDayWins(t *testing.T) {
	resp := ParseDietPlan("Day 2: Lunch: Rice\nDay 2: Lunch: Roti", "unknown")
	assert.Equal(t, "Roti", resp.DietPlan.Day(2).Lunch)
}

func TestParseDietPlan_OutOfRangeDaysIgnored(t *testing.T) {
	resp := ParseDietPlan("Day 9: Breakfast: Eggs", "unknown")

	assert.Equal(t, models.DegradedPlanNote, resp.Note)
	assert.Equal(t, models.NewDietPlan(), resp.DietPlan)
}

func TestParseDietPlan_NothingRecognised(t *testing.T) {
	resp := ParseDietPlan("Sorry, I cannot help with that.", "bihar")

	assert.Equal(t, "bihar", resp.Region)
	assert.Equal(t, models.DegradedPlanNote, resp.Note)
	assert.Equal(t, models.NewDietPlan(), resp.DietPlan)
}

func TestParseDietPlan_RoundTrip(t *testing.T) {
	plan := models.NewDietPlan()
	plan.Day(1).Set(models.Breakfast, "Idli with sambar")
	plan.Day(4).Set(models.EveningSnack, "Roasted chana")
	plan.Day(7).Set(models.Dinner, "Vegetable pulao")

	b, err := json.Marshal(plan)
	require.NoError(t, err)

	resp := ParseDietPlan(string(b), "kerala")
	assert.Empty(t, resp.Note)
	assert.Equal(t, plan, resp.DietPlan)

	again, err := json.Marshal(resp.DietPlan)
	require.NoError(t, err)
	assert.JSONEq(t, string(b), string(again))
}

func TestExtractJSONCandidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"braces", "note {\"a\":{\"b\":2}} end", `{"a":{"b":2}}`},
		{"fence with commentary", "```json\nPlan: {\"a\":1} done\n```", `{"a":1}`},
		{"no braces", "  plain text  ", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONCandidate(tt.in))
		})
	}
}
