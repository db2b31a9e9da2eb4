package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Meal identifies one of the five fixed meal slots of a day.
type Meal int

const (
	Breakfast Meal = iota
	MorningSnack
	Lunch
	EveningSnack
	Dinner
)

// Meals lists every slot in output order.
var Meals = []Meal{Breakfast, MorningSnack, Lunch, EveningSnack, Dinner}

// DaysInPlan is the fixed length of a diet plan.
const DaysInPlan = 7

func (m Meal) Key() string {
	switch m {
	case Breakfast:
		return "breakfast"
	case MorningSnack:
		return "morning_snack"
	case Lunch:
		return "lunch"
	case EveningSnack:
		return "evening_snack"
	case Dinner:
		return "dinner"
	default:
		return ""
	}
}

// Label is the human wording used for the meal in free text.
func (m Meal) Label() string {
	switch m {
	case MorningSnack:
		return "morning snack"
	case EveningSnack:
		return "evening snack"
	default:
		return m.Key()
	}
}

type DayPlan struct {
	Breakfast    string `json:"breakfast"`
	MorningSnack string `json:"morning_snack"`
	Lunch        string `json:"lunch"`
	EveningSnack string `json:"evening_snack"`
	Dinner       string `json:"dinner"`
}

// NewDayPlan returns a day with every slot set to NotSpecified.
func NewDayPlan() DayPlan {
	return DayPlan{
		Breakfast:    NotSpecified,
		MorningSnack: NotSpecified,
		Lunch:        NotSpecified,
		EveningSnack: NotSpecified,
		Dinner:       NotSpecified,
	}
}

// Set stores v in the given slot. An empty value keeps the slot unspecified.
func (d *DayPlan) Set(m Meal, v string) {
	if v == "" {
		v = NotSpecified
	}
	switch m {
	case Breakfast:
		d.Breakfast = v
	case MorningSnack:
		d.MorningSnack = v
	case Lunch:
		d.Lunch = v
	case EveningSnack:
		d.EveningSnack = v
	case Dinner:
		d.Dinner = v
	}
}

func (d DayPlan) Get(m Meal) string {
	switch m {
	case Breakfast:
		return d.Breakfast
	case MorningSnack:
		return d.MorningSnack
	case Lunch:
		return d.Lunch
	case EveningSnack:
		return d.EveningSnack
	case Dinner:
		return d.Dinner
	default:
		return ""
	}
}

// DietPlan always holds exactly seven days; it encodes as {"day1": ..., "day7": ...}.
type DietPlan [DaysInPlan]DayPlan

func NewDietPlan() DietPlan {
	var p DietPlan
	for i := range p {
		p[i] = NewDayPlan()
	}
	return p
}

// DayKey returns the JSON key for a 1-based day number.
func DayKey(day int) string {
	return "day" + strconv.Itoa(day)
}

// Day returns the plan for a 1-based day number.
func (p *DietPlan) Day(day int) *DayPlan {
	if day < 1 || day > DaysInPlan {
		return nil
	}
	return &p[day-1]
}

func (p DietPlan) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(DayKey(i + 1))
		buf.Write(key)
		buf.WriteByte(':')
		b, err := json.Marshal(day)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *DietPlan) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	plan := NewDietPlan()
	for i := range plan {
		msg, ok := raw[DayKey(i+1)]
		if !ok {
			continue
		}
		day := NewDayPlan()
		if err := json.Unmarshal(msg, &day); err != nil {
			return fmt.Errorf("decode %s: %w", DayKey(i+1), err)
		}
		plan[i] = day
	}
	*p = plan
	return nil
}

type NutritionResponse struct {
	DietPlan DietPlan `json:"diet_plan"`
	Region   string   `json:"region"`
	Note     string   `json:"note,omitempty"`
}
