package models

// CategoryDto is a feedback category as served to clients. Active is
// optional on the wire; a missing flag means the category is usable.
type CategoryDto struct {
	Slug      string            `json:"slug"`
	Active    *bool             `json:"active,omitempty"`
	Names     map[string]string `json:"names,omitempty"`
	SortOrder int               `json:"sortOrder,omitempty"`
}

// IsActive treats an unspecified flag as active.
func (c CategoryDto) IsActive() bool {
	return c.Active == nil || *c.Active
}

// Label returns the category name in lang, then English, then the slug.
func (c CategoryDto) Label(lang string) string {
	if name := c.Names[lang]; name != "" {
		return name
	}
	if name := c.Names["en"]; name != "" {
		return name
	}
	return c.Slug
}

// SubmissionPayload is the body of POST /api/v1/feedback. UserID is an
// int64 when the session id parsed as an integer, otherwise a string.
type SubmissionPayload struct {
	ServiceLine  ServiceLine `json:"serviceLine" binding:"required"`
	CategorySlug string      `json:"categorySlug" binding:"required"`
	Rating       int         `json:"rating" binding:"required,min=1,max=5"`
	Comment      string      `json:"comment,omitempty" binding:"max=2000"`
	IsAnonymous  bool        `json:"isAnonymous"`
	UserID       interface{} `json:"userId,omitempty"`
}

type SubmitResponse struct {
	ID string `json:"id"`
}

// ErrorBody is the structured part of a failed response the dialog reads.
type ErrorBody struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
