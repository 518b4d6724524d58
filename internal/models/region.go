package models

// Region names a part of a fetched page handed to structured extraction.
type Region string

const (
	// RegionListingTable is the table of new submissions on a listing page.
	RegionListingTable Region = "listing-table"
	// RegionDetailPost is the post body of a detail page.
	RegionDetailPost Region = "detail-post"
)
