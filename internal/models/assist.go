package models

// DraftRequest asks the writing assistant to turn rough notes into article text.
type DraftRequest struct {
	Title    string `json:"title"     validate:"required"`
	Summary  string `json:"summary"   validate:"required"`
	DateFrom string `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo   string `json:"date_to"   validate:"omitempty,datetime=2006-01-02"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// DraftSuggestion is what the assistant proposes for the editor form.
// Empty fields mean no suggestion.
type DraftSuggestion struct {
	Content         string `json:"content"`
	Excerpt         string `json:"excerpt"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
}
