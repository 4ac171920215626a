// Package document defines the generated legal document entity.
package document

import "time"

// Document is a persisted, LLM-generated legal piece. RawText is the model
// response exactly as received; HTML is the rendered output of the
// formatter. Both are kept so a document can be re-rendered later.
type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Area         string    `json:"area"`
	DocumentType string    `json:"document_type"`
	Client       string    `json:"client"`
	RawText      string    `json:"raw_text"`
	HTML         string    `json:"html"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
