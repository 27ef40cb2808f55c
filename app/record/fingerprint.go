package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/width"
)

// Fingerprint derives the deduplication key for a record.
//
// When the provider exposes a stable native identifier it is used directly,
// prefixed with the source so identifiers from different providers can never
// collide. Otherwise the key is a hash over the normalized title, the
// published date and the link, so the same announcement seen on two runs
// always maps to the same key even if the provider reorders or re-serves it.
func (r Record) Fingerprint() string {
	if r.RawID != "" {
		return fmt.Sprintf("%s:%s", r.Source, r.RawID)
	}

	title := width.Narrow.String(strings.TrimSpace(r.Title))
	content := fmt.Sprintf("%s|%s|%s", title, r.PublishedAt.Format("2006-01-02"), r.Link)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])[:16]
}
