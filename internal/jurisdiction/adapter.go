// Package jurisdiction defines the adapter contract every disclosure regime
// implements, and the registry that runs them. Downstream components (query
// engine, exclusion logic, report assembler) only ever see the canonical
// record shape; nothing outside this package branches on jurisdiction
// identity.
package jurisdiction

import (
	"context"

	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/query"
)

// Adapter converts one jurisdiction's raw publication into canonical
// donation records.
//
// Search must never return an error: network, parse, and format failures are
// absorbed at this boundary and represented as data, an empty or partial
// ResultSet carrying warnings. Adapters backed by a query API may prefilter
// on the wire; the registry's engine pass is authoritative either way.
type Adapter interface {
	Info() model.SourceInfo
	Search(ctx context.Context, q query.Query, lookbackYears int) model.ResultSet
}

// Run executes the adapters sequentially (one fetch-and-parse completes
// before the next begins) and applies the boolean query uniformly to each
// result set. The progress callback, if non-nil, fires before each adapter
// starts.
func Run(ctx context.Context, adapters []Adapter, q query.Query, lookbackYears int, progress func(model.SourceInfo)) []model.ResultSet {
	results := make([]model.ResultSet, 0, len(adapters))
	for _, a := range adapters {
		if progress != nil {
			progress(a.Info())
		}
		rs := a.Search(ctx, q, lookbackYears)
		rs.Records = query.Evaluate(q, rs.Records, query.DonorField)
		results = append(results, rs)
	}
	return results
}
