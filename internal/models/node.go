package models

// NodeLabel is the label of a node in the audiobook graph.
type NodeLabel string

const (
	LabelAudiobook NodeLabel = "Audiobook"
	LabelAuthor    NodeLabel = "Author"
	LabelReader    NodeLabel = "Reader"
	LabelCategory  NodeLabel = "Category"
	LabelKeyword   NodeLabel = "Keyword"
	LabelSeries    NodeLabel = "Series"
)

// KeyProperty returns the property that uniquely identifies nodes of the label.
func (l NodeLabel) KeyProperty() string {
	switch l {
	case LabelAudiobook:
		return "path"
	case LabelAuthor, LabelReader:
		return "name"
	case LabelCategory, LabelKeyword:
		return "value"
	case LabelSeries:
		return "title"
	default:
		return ""
	}
}

// NodeLabels lists every label the graph store writes.
func NodeLabels() []NodeLabel {
	return []NodeLabel{LabelAudiobook, LabelAuthor, LabelReader, LabelCategory, LabelKeyword, LabelSeries}
}
