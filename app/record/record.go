package record

import (
	"time"
)

// Source identifies the upstream provider a Record came from. The label is
// what ends up in notification messages, so it stays short and recognizable.
type Source string

const (
	SourceHKEXNews  Source = "HKEXNEWS"
	SourceEastmoney Source = "EASTMONEY"
	SourceCNInfo    Source = "CNINFO"
)

// Record is one upstream announcement normalized to a common shape, whatever
// provider it came from.
type Record struct {
	Source      Source
	Title       string
	PublishedAt time.Time
	Link        string

	// RawID is the provider-native identifier, empty when the provider does
	// not expose a stable one.
	RawID string

	// Content holds the extracted text of the announcement document when
	// detail fetching is enabled. Empty otherwise.
	Content string
}

// Valid reports whether the record carries the minimum required fields.
// Records without a source or title cannot be classified and are dropped
// by the adapters.
func (r Record) Valid() bool {
	return r.Source != "" && r.Title != ""
}
