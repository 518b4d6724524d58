package models

import (
	"errors"
	"strings"
)

// ErrNoAuthors is returned for metadata without a single usable author.
var ErrNoAuthors = errors.New("audiobook has no authors")

// AudiobookMetadata is the record extracted from a detail page, optionally
// enriched with derived descriptions.
type AudiobookMetadata struct {
	Title          string   `json:"title"`
	Categories     []string `json:"categories"`
	Language       string   `json:"language"`
	Keywords       []string `json:"keywords"`
	CoverURL       string   `json:"cover_url"`
	Authors        []string `json:"authors"`
	ReadBy         []string `json:"read_by"`
	Format         string   `json:"format"`
	Bitrate        *string  `json:"bitrate,omitempty"`
	Unabridged     bool     `json:"unabridged"`
	Description    string   `json:"description"`
	FileSize       *string  `json:"file_size,omitempty"`
	Runtime        *string  `json:"runtime,omitempty"`
	IsPartOfSeries bool     `json:"is_part_of_series"`
	Series         *string  `json:"series,omitempty"`
	SeriesVolume   *string  `json:"series_volume,omitempty"`
	UploadDate     *string  `json:"upload_date,omitempty"`

	VeryShortDescription     *string `json:"very_short_description,omitempty"`
	DescriptionForEmbeddings *string `json:"description_for_embeddings,omitempty"`
}

// Normalized returns a copy with series fields cleared when the book is not
// part of a series and with categories and keywords de-duplicated.
func (m AudiobookMetadata) Normalized() AudiobookMetadata {
	out := m
	if !out.IsPartOfSeries {
		out.Series = nil
		out.SeriesVolume = nil
	}
	out.Authors = compact(m.Authors)
	out.ReadBy = compact(m.ReadBy)
	out.Categories = compact(m.Categories)
	out.Keywords = compact(m.Keywords)
	return out
}

// Validate checks the invariants the graph store relies on.
func (m AudiobookMetadata) Validate() error {
	for _, a := range m.Authors {
		if strings.TrimSpace(a) != "" {
			return nil
		}
	}
	return ErrNoAuthors
}

// SeriesTitle returns the series title when the book belongs to one.
func (m AudiobookMetadata) SeriesTitle() (string, bool) {
	if !m.IsPartOfSeries || m.Series == nil || *m.Series == "" {
		return "", false
	}
	return *m.Series, true
}

// Volume returns the series volume only when both series and volume are known.
func (m AudiobookMetadata) Volume() (string, bool) {
	if _, ok := m.SeriesTitle(); !ok || m.SeriesVolume == nil || *m.SeriesVolume == "" {
		return "", false
	}
	return *m.SeriesVolume, true
}

// compact drops blanks and exact duplicates, keeping first occurrences.
// Values are not case folded or trimmed.
func compact(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
