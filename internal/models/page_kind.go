package models

import (
	"encoding/json"
	"fmt"
)

// PageKind is the closed set of page types the crawler understands.
type PageKind int

const (
	// PageKindListing is a catalog page listing new submissions.
	PageKindListing PageKind = iota + 1
	// PageKindDetail is a page describing a single audiobook.
	PageKindDetail
)

func (k PageKind) String() string {
	switch k {
	case PageKindListing:
		return "listing"
	case PageKindDetail:
		return "detail"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Valid reports whether k is one of the known page kinds.
func (k PageKind) Valid() bool {
	return k == PageKindListing || k == PageKindDetail
}

// MarshalJSON encodes the kind by name.
func (k PageKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("marshal page kind: %s", k)
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name, rejecting anything outside the closed set.
func (k *PageKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "listing":
		*k = PageKindListing
	case "detail":
		*k = PageKindDetail
	default:
		return fmt.Errorf("unknown page kind %q", name)
	}
	return nil
}
