package models

// Relation is a relationship type in the audiobook graph.
type Relation string

const (
	RelWrittenBy       Relation = "WRITTEN_BY"
	RelReadBy          Relation = "READ_BY"
	RelCategorizedAs   Relation = "CATEGORIZED_AS"
	RelHasKeyword      Relation = "HAS_KEYWORD"
	RelPartOfSeries    Relation = "PART_OF_SERIES"
	RelWrittenBySeries Relation = "WRITTEN_BY_SERIES"
)

// Edge is a relationship between two nodes identified by their key values.
type Edge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Relation Relation `json:"relation"`
}
