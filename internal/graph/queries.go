package graph

import (
	"fmt"
	"strings"

	"github.com/MMMarcy/voxlume/internal/models"
)

// Cypher statements issued by Store. Every statement after the audiobook
// upsert re-matches the node by path inside the same transaction.
const (
	QueryAudiobookExists = "RETURN EXISTS { MATCH (:Audiobook {path: $path}) } AS pathExists"

	QueryUpsertAudiobook = "MERGE (ab:Audiobook {path: $path}) " +
		"ON CREATE SET ab = $props, ab.last_upload = timestamp() " +
		"ON MATCH SET ab.last_upload = timestamp()"

	QuerySetSeriesVolume = "MATCH (ab:Audiobook {path: $path}) " +
		"SET ab.series_volume = $series_volume"

	QueryAttachReaders = "MATCH (ab:Audiobook {path: $path}) " +
		"UNWIND $names AS name " +
		"MERGE (reader:Reader {name: name}) " +
		"MERGE (ab)-[:READ_BY]->(reader)"

	QueryAttachCategories = "MATCH (ab:Audiobook {path: $path}) " +
		"UNWIND $values AS value " +
		"MERGE (category:Category {value: value}) " +
		"MERGE (ab)-[:CATEGORIZED_AS]->(category)"

	QueryAttachKeywords = "MATCH (ab:Audiobook {path: $path}) " +
		"UNWIND $values AS value " +
		"MERGE (kw:Keyword {value: value}) " +
		"MERGE (ab)-[:HAS_KEYWORD]->(kw)"

	QueryAttachAuthors = "MATCH (ab:Audiobook {path: $path}) " +
		"UNWIND $names AS name " +
		"MERGE (author:Author {name: name}) " +
		"MERGE (ab)-[:WRITTEN_BY]->(author)"

	QueryAttachSeries = "MATCH (ab:Audiobook {path: $path}) " +
		"MERGE (series:Series {title: $title}) " +
		"MERGE (ab)-[:PART_OF_SERIES]->(series) " +
		"WITH series " +
		"UNWIND $authors AS name " +
		"MATCH (author:Author {name: name}) " +
		"MERGE (series)-[:WRITTEN_BY_SERIES]->(author)"
)

// statement is one parameterised Cypher call inside the persist transaction.
type statement struct {
	step   string
	query  string
	params map[string]any
}

// buildPersistPlan turns normalized metadata into the ordered statements of a
// single persist transaction.
func buildPersistPlan(meta models.AudiobookMetadata, path string) []statement {
	plan := []statement{
		{step: "upsert audiobook", query: QueryUpsertAudiobook, params: map[string]any{"path": path, "props": audiobookProps(meta, path)}},
	}

	var volume any
	if v, ok := meta.Volume(); ok {
		volume = v
	}
	plan = append(plan, statement{
		step:   "set series volume",
		query:  QuerySetSeriesVolume,
		params: map[string]any{"path": path, "series_volume": volume},
	})

	if len(meta.ReadBy) > 0 {
		plan = append(plan, statement{step: "attach readers", query: QueryAttachReaders, params: map[string]any{"path": path, "names": toAny(meta.ReadBy)}})
	}
	if len(meta.Categories) > 0 {
		plan = append(plan, statement{step: "attach categories", query: QueryAttachCategories, params: map[string]any{"path": path, "values": toAny(meta.Categories)}})
	}
	if len(meta.Keywords) > 0 {
		plan = append(plan, statement{step: "attach keywords", query: QueryAttachKeywords, params: map[string]any{"path": path, "values": toAny(meta.Keywords)}})
	}
	plan = append(plan, statement{step: "attach authors", query: QueryAttachAuthors, params: map[string]any{"path": path, "names": toAny(meta.Authors)}})

	if title, ok := meta.SeriesTitle(); ok {
		plan = append(plan, statement{
			step:   "attach series",
			query:  QueryAttachSeries,
			params: map[string]any{"path": path, "title": title, "authors": toAny(meta.Authors)},
		})
	}
	return plan
}

// audiobookProps holds the scalar properties written when the node is created.
// Relational fields and series_volume are handled by their own statements.
func audiobookProps(meta models.AudiobookMetadata, path string) map[string]any {
	props := map[string]any{
		"path":        path,
		"title":       meta.Title,
		"language":    meta.Language,
		"cover_url":   meta.CoverURL,
		"format":      meta.Format,
		"unabridged":  meta.Unabridged,
		"description": meta.Description,
	}
	setOptional(props, "bitrate", meta.Bitrate)
	setOptional(props, "file_size", meta.FileSize)
	setOptional(props, "runtime", meta.Runtime)
	setOptional(props, "upload_date", meta.UploadDate)
	setOptional(props, "very_short_description", meta.VeryShortDescription)
	setOptional(props, "description_for_embeddings", meta.DescriptionForEmbeddings)
	return props
}

func setOptional(props map[string]any, key string, value *string) {
	if value != nil {
		props[key] = *value
	}
}

// toAny converts to the []any form the driver sends as a Cypher list.
func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// constraintQuery builds the uniqueness constraint for a label's key property.
func constraintQuery(label models.NodeLabel) string {
	prop := label.KeyProperty()
	return fmt.Sprintf(
		"CREATE CONSTRAINT %s_%s_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
		strings.ToLower(string(label)), prop, label, prop,
	)
}
