package models

// SchemeRecord is a health-scheme search hit parsed into labelled fields.
// Empty fields are omitted when encoded; RawContent is only set when no
// labelled field could be extracted.
type SchemeRecord struct {
	SchemeName        string `json:"scheme_name,omitempty"`
	State             string `json:"state,omitempty"`
	Description       string `json:"description,omitempty"`
	Eligibility       string `json:"eligibility,omitempty"`
	HowToApply        string `json:"how_to_apply,omitempty"`
	Benefits          string `json:"benefits,omitempty"`
	DocumentsRequired string `json:"documents_required,omitempty"`
	ContactInfo       string `json:"contact_info,omitempty"`
	RawContent        string `json:"raw_content,omitempty"`
	ResultID          int    `json:"result_id,omitempty"`
}

// HasStructuredFields reports whether any labelled field besides the name was found.
func (r SchemeRecord) HasStructuredFields() bool {
	return r.State != "" || r.Description != "" || r.Eligibility != "" ||
		r.HowToApply != "" || r.Benefits != "" || r.DocumentsRequired != "" ||
		r.ContactInfo != ""
}

type SearchResponse struct {
	Results []SchemeRecord `json:"results"`
}
