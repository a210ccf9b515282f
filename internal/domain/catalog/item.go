package catalog

const (
	KindFlashcard = "flashcard"
	KindMCQ       = "mcq"
	KindTable     = "table"
)

// ItemMetadata is the catalog's view of an item. The catalog is an external
// collaborator; this core reads metadata by id and never writes it.
type ItemMetadata struct {
	ItemID  int64    `json:"itemId"`
	Kind    string   `json:"kind"`
	Subject string   `json:"subject"`
	Chapter string   `json:"chapter"`
	Section string   `json:"section"`
	Tags    []string `json:"tags,omitempty"`
}

// FilterOptions are the distinct attribute values across a set of items, used
// by the recipe selection UI.
type FilterOptions struct {
	Subjects []string `json:"subjects"`
	Chapters []string `json:"chapters"`
	Sections []string `json:"sections"`
}
