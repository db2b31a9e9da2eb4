package parser

import (
	"regexp"
	"strings"

	"health-rag/internal/models"
)

type schemeField struct {
	re  *regexp.Regexp
	set func(r *models.SchemeRecord, v string)
}

// matched against the whole text, in output order
var schemeFields = []schemeField{
	{regexp.MustCompile(models.StateRegex), func(r *models.SchemeRecord, v string) { r.State = v }},
	{regexp.MustCompile(models.DescriptionRegex), func(r *models.SchemeRecord, v string) { r.Description = v }},
	{regexp.MustCompile(models.EligibilityRegex), func(r *models.SchemeRecord, v string) { r.Eligibility = v }},
	{regexp.MustCompile(models.HowToApplyRegex), func(r *models.SchemeRecord, v string) { r.HowToApply = v }},
	{regexp.MustCompile(models.BenefitsRegex), func(r *models.SchemeRecord, v string) { r.Benefits = v }},
	{regexp.MustCompile(models.DocumentsRequiredRegex), func(r *models.SchemeRecord, v string) { r.DocumentsRequired = v }},
	{regexp.MustCompile(models.ContactRegex), func(r *models.SchemeRecord, v string) { r.ContactInfo = v }},
}

// ParseScheme turns a health-scheme text block into a SchemeRecord.
//
// The first non-empty line becomes the scheme name. Each labelled field
// ("State:", "Benefits:", ...) takes the rest of the first line carrying that
// label anywhere in the text. When no labelled field is found the untouched
// input is kept in RawContent so free text is never lost.
func ParseScheme(content string) models.SchemeRecord {
	var record models.SchemeRecord

	lines := strings.Split(strings.TrimSpace(content), "\n")
	record.SchemeName = strings.TrimSpace(lines[0])

	for _, field := range schemeFields {
		if m := field.re.FindStringSubmatch(content); m != nil {
			field.set(&record, strings.TrimSpace(m[1]))
		}
	}

	if !record.HasStructuredFields() {
		record.RawContent = content
	}
	return record
}
