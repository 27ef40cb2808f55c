package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yonwatch/hklisting/app/record"
)

// maxRecords caps a single fetch so an unexpectedly large provider response
// never turns into unbounded memory growth.
const maxRecords = 50

// Adapter fetches candidate announcements from one upstream provider and
// maps them to normalized records.
//
// Fetch returns an error only when the provider as a whole is unavailable;
// individual malformed entries are skipped, not fatal to the batch. Output
// ordering is not guaranteed.
type Adapter interface {
	Name() string
	Source() record.Source

	// EntityScoped reports whether the adapter's queries are already
	// restricted to the tracked entity, so results need no alias match.
	EntityScoped() bool

	Fetch(ctx context.Context, lookbackDays int) ([]record.Record, error)
}

// Options carries the shared adapter dependencies.
type Options struct {
	Client      *http.Client
	UserAgent   string
	CompanyName string
	StockCode   string
}

// NewFromName constructs the adapter registered under the given name.
// The configured adapter set is a deployment decision: an unavailable
// provider is simply omitted from the configuration, never special-cased
// at runtime.
func NewFromName(name string, opts Options) (Adapter, error) {
	switch name {
	case "hkexnews":
		return NewHKEXNews(opts), nil
	case "eastmoney":
		return NewEastmoney(opts), nil
	case "cninfo":
		return NewCNInfo(opts), nil
	default:
		return nil, fmt.Errorf("unknown source adapter: %s", name)
	}
}
