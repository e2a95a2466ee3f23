package extractor

// ParsedResume is the structured result the extraction service derives from a
// resume document. Every field is independently optional: a sparse result is
// still a successful extraction, never an error.
type ParsedResume struct {
	Name        *string      `json:"name,omitempty"`
	PhoneNumber *string      `json:"phone_number,omitempty"`
	Email       *string      `json:"email,omitempty"`
	Skills      []string     `json:"skills,omitempty"`
	Experiences []Experience `json:"experiences,omitempty"`
	Education   []Education  `json:"education,omitempty"`
}

type Experience struct {
	Company     *string `json:"company,omitempty"`
	Year        *string `json:"year,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Education struct {
	Institution *string `json:"institution,omitempty"`
	Degree      *string `json:"degree,omitempty"`
	Year        *string `json:"year,omitempty"`
}
