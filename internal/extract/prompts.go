package extract

import "strings"

const listingPrompt = `You are a web scraping assistant. Extract the new audiobook releases
listed in the page content below.

Answer with a single JSON object and nothing else, shaped as:
{"submissions": [{"submission_date": "...", "title": "...", "author": "...", "url": "..."}]}

- submission_date: the date the entry was submitted, ideally YYYY-MM-DD.
- title and author: as shown for the entry, empty when missing.
- url: the link to the audiobook's details page exactly as it appears
  (usually a site-relative path such as /abss/some-title/).

Page content:
` + "```" + `
{content}
` + "```\n"

const detailPrompt = `You are a web scraping assistant. Extract the metadata of the audiobook
described in the page content below.

Answer with a single JSON object and nothing else, using these keys:
- title (string): the full title.
- categories (array of strings): categories or genres, e.g. "Science Fiction".
- language (string): the narration language.
- keywords (array of strings): keywords or tags.
- cover_url (string): the fully qualified cover image URL.
- authors (array of strings): the people who wrote the book.
- read_by (array of strings): the narrators.
- format (string): the audio format, e.g. "MP3" or "M4B".
- bitrate (string or null): e.g. "128 kbps".
- unabridged (boolean).
- description (string): the description without metadata already captured
  by other keys.
- file_size (string or null): e.g. "1.2 GB".
- runtime (string or null): preferably HH:MM:SS.
- is_part_of_series (boolean).
- series (string or null): the series title.
- series_volume (string or null): the volume within the series.
- upload_date (string or null): when the audiobook was posted.

Page content:
` + "```" + `
{content}
` + "```\n"

const shortDescriptionPrompt = `Create a very short summary, at most a couple of concise sentences,
of the audiobook description below. It should work as a brief overview.

Description:
` + "```" + `
{description}
` + "```" + `

Only output the summary without any preamble.
`

const embeddingDescriptionPrompt = `You are a search optimization specialist. Rewrite the audiobook
description below to improve how well it is found by vector search.

Use the keywords and phrases a user might type in a generic query for this
kind of content.

Original description:
` + "```" + `
{description}
` + "```" + `

Only output the rewritten description without any preamble.
`

func render(template, key, value string) string {
	return strings.ReplaceAll(template, "{"+key+"}", value)
}
