package models

const (
	StateRegex             = `(?i)State:\s*([^\n]+)`
	DescriptionRegex       = `(?i)Description:\s*([^\n]+)`
	EligibilityRegex       = `(?i)Eligibility:\s*([^\n]+)`
	HowToApplyRegex        = `(?i)How to Apply:\s*([^\n]+)`
	BenefitsRegex          = `(?i)Benefits:\s*([^\n]+)`
	DocumentsRequiredRegex = `(?i)Documents Required:\s*([^\n]+)`
	ContactRegex           = `(?i)Contact:\s*([^\n]+)`

	// first non-empty group wins: ```json fence, any fence, outermost braces
	JSONBlockRegex = "(?s)```json\\s*(.*?)\\s*```|```\\s*(.*?)\\s*```|(\\{.*\\})"

	DaySpacedRegex   = `(?i)Day (\d+)[:\s]*`
	DayCompactRegex  = `(?i)day(\d+)[:\s]*`
	DayUpperRegex    = `(?i)DAY (\d+)[:\s]*`
	MealLabelSuffix  = `[:\s]*`
	BreakfastStops   = `(?i)morning snack|evening snack|lunch|dinner|snack`
	MorningSnackStop = `(?i)lunch|dinner|breakfast|evening`
	LunchStops       = `(?i)morning snack|evening snack|breakfast|dinner|snack`
	EveningSnackStop = `(?i)breakfast|lunch|dinner|morning`
	DinnerStops      = `(?i)morning snack|evening snack|breakfast|lunch|snack`

	NotSpecified     = "Not specified"
	DegradedPlanNote = "The diet plan could not be parsed as JSON and was manually structured."
	UnknownRegion    = "unknown"
	PayloadTextKey   = "text"
	PayloadSourceKey = "source"
	PayloadPageKey   = "page"
	PayloadChunkKey  = "chunk"
)

// RegionKeywords are scanned in order; the first keyword followed by words wins.
var RegionKeywords = []string{"region", "state", "city", "district", "area", "from", "lives in"}

var (
	NutritionPromptTemplate = `
You are a nutrition expert specializing in maternal health. Based on the following information about a pregnant woman and nutritional guidelines, create a personalized 7-day diet plan.

Woman's details: %s

Relevant nutrition information: %s

Geographic region: %s

Create a detailed 7-day diet plan specifically tailored for this pregnant woman considering her geographical region, local food availability, and nutritional needs. Include breakfast, lunch, dinner, and snacks for each day. Focus on providing adequate protein, iron, folate, calcium, and other essential nutrients for pregnancy.

Your response should be in a structured JSON format with the following structure:
{
  "day1": {
    "breakfast": "Detailed breakfast description",
    "morning_snack": "Detailed morning snack description",
    "lunch": "Detailed lunch description",
    "evening_snack": "Detailed evening snack description",
    "dinner": "Detailed dinner description"
  },
  ... and so on for all 7 days
}

Make sure your response is valid JSON that can be parsed directly.
`
)
