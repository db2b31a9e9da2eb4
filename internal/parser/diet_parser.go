package parser

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"health-rag/internal/models"
)

// planStrategy is one attempt at structuring an LLM diet-plan answer.
// ok is false when the strategy found nothing it recognises.
type planStrategy struct {
	name     string
	degraded bool
	parse    func(raw, candidate string) (plan models.DietPlan, ok bool)
}

var jsonBlockRe = regexp.MustCompile(models.JSONBlockRegex)

var dayMarkerPatterns = []*regexp.Regexp{
	regexp.MustCompile(models.DaySpacedRegex),
	regexp.MustCompile(models.DayCompactRegex),
	regexp.MustCompile(models.DayUpperRegex),
}

type mealPattern struct {
	meal  models.Meal
	label *regexp.Regexp
	stop  *regexp.Regexp
}

var mealPatterns = []mealPattern{
	newMealPattern(models.Breakfast, models.BreakfastStops),
	newMealPattern(models.MorningSnack, models.MorningSnackStop),
	newMealPattern(models.Lunch, models.LunchStops),
	newMealPattern(models.EveningSnack, models.EveningSnackStop),
	newMealPattern(models.Dinner, models.DinnerStops),
}

func newMealPattern(meal models.Meal, stops string) mealPattern {
	return mealPattern{
		meal:  meal,
		label: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(meal.Label()) + models.MealLabelSuffix),
		stop:  regexp.MustCompile(stops),
	}
}

// strategies run in order; the first one reporting ok wins.
var planStrategies = []planStrategy{
	{name: "json", parse: func(_, candidate string) (models.DietPlan, bool) { return decodeJSONPlan(candidate) }},
	{name: "day-spaced", degraded: true, parse: dayMarkerStrategy(dayMarkerPatterns[0])},
	{name: "day-compact", degraded: true, parse: dayMarkerStrategy(dayMarkerPatterns[1])},
	{name: "day-upper", degraded: true, parse: dayMarkerStrategy(dayMarkerPatterns[2])},
	{name: "empty", degraded: true, parse: func(_, _ string) (models.DietPlan, bool) { return models.NewDietPlan(), true }},
}

// ParseDietPlan converts free-form model output into a complete seven-day plan.
// It never fails: output that is not usable JSON is structured from "Day N"
// markers and meal labels, and the result carries DegradedPlanNote.
func ParseDietPlan(llmText, region string) models.NutritionResponse {
	candidate := ExtractJSONCandidate(llmText)
	for _, s := range planStrategies {
		plan, ok := s.parse(llmText, candidate)
		if !ok {
			continue
		}
		log.Debug().Str("strategy", s.name).Msg("Diet plan parsed")
		resp := models.NutritionResponse{DietPlan: plan, Region: region}
		if s.degraded {
			resp.Note = models.DegradedPlanNote
		}
		return resp
	}
	// unreachable while the "empty" strategy closes the chain
	return models.NutritionResponse{DietPlan: models.NewDietPlan(), Region: region, Note: models.DegradedPlanNote}
}

// ExtractJSONCandidate pulls the most likely JSON object out of model output:
// a ```json fence, then any fence, then the outermost braces. The result is
// trimmed so it starts at the first '{' and ends at the last '}' when present.
func ExtractJSONCandidate(text string) string {
	candidate := text
	if m := jsonBlockRe.FindStringSubmatch(text); m != nil {
		for _, group := range m[1:] {
			if group != "" {
				candidate = group
				break
			}
		}
	}
	candidate = strings.TrimSpace(candidate)
	if !strings.HasPrefix(candidate, "{") {
		if i := strings.Index(candidate, "{"); i >= 0 {
			candidate = candidate[i:]
		}
	}
	if !strings.HasSuffix(candidate, "}") {
		if i := strings.LastIndex(candidate, "}"); i >= 0 {
			candidate = candidate[:i+1]
		}
	}
	return candidate
}

func decodeJSONPlan(candidate string) (models.DietPlan, bool) {
	var top map[string]any
	if err := json.Unmarshal([]byte(candidate), &top); err != nil || top == nil {
		return models.DietPlan{}, false
	}

	plan := models.NewDietPlan()
	for day := 1; day <= models.DaysInPlan; day++ {
		dayData, ok := top[models.DayKey(day)].(map[string]any)
		if !ok {
			continue
		}
		dp := plan.Day(day)
		for _, meal := range models.Meals {
			dp.Set(meal, mealValueString(dayData[meal.Key()]))
		}
	}
	return plan, true
}

// mealValueString renders a decoded JSON value as meal text.
func mealValueString(v any) string {
	switch val := v.(type) {
	case nil:
		return models.NotSpecified
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return models.NotSpecified
		}
		return string(b)
	}
}

type dayBlock struct {
	day     int
	content string
}

// splitDayBlocks cuts text at every marker match; a block runs until the next
// marker of the same pattern or the end of text.
func splitDayBlocks(marker *regexp.Regexp, text string) []dayBlock {
	locs := marker.FindAllStringSubmatchIndex(text, -1)
	blocks := make([]dayBlock, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		day, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		blocks = append(blocks, dayBlock{day: day, content: text[loc[1]:end]})
	}
	return blocks
}

func dayMarkerStrategy(marker *regexp.Regexp) func(raw, candidate string) (models.DietPlan, bool) {
	return func(raw, _ string) (models.DietPlan, bool) {
		blocks := splitDayBlocks(marker, raw)
		if len(blocks) == 0 {
			return models.DietPlan{}, false
		}
		plan := models.NewDietPlan()
		for _, b := range blocks {
			dp := plan.Day(b.day)
			if dp == nil {
				continue
			}
			// later blocks for the same day replace earlier ones
			*dp = extractMeals(b.content)
		}
		return plan, true
	}
}

func extractMeals(block string) models.DayPlan {
	day := models.NewDayPlan()
	for _, mp := range mealPatterns {
		loc := mp.label.FindStringIndex(block)
		if loc == nil {
			continue
		}
		value := block[loc[1]:]
		if stop := mp.stop.FindStringIndex(value); stop != nil {
			value = value[:stop[0]]
		}
		day.Set(mp.meal, cleanMealText(value))
	}
	return day
}

func cleanMealText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".,;")
	return strings.TrimSpace(s)
}
