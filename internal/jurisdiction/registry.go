package jurisdiction

import (
	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/jurisdiction/austria"
	"github.com/donortrail/donortrail/internal/jurisdiction/estonia"
	"github.com/donortrail/donortrail/internal/jurisdiction/eu"
	"github.com/donortrail/donortrail/internal/jurisdiction/germany"
	"github.com/donortrail/donortrail/internal/jurisdiction/italy"
	"github.com/donortrail/donortrail/internal/jurisdiction/latvia"
	"github.com/donortrail/donortrail/internal/jurisdiction/lithuania"
	"github.com/donortrail/donortrail/internal/jurisdiction/netherlands"
	"github.com/donortrail/donortrail/internal/jurisdiction/uk"
)

// All returns every registered adapter in presentation order: national
// regimes first, the supranational EU level last. New jurisdictions are
// added here and nowhere else.
func All(f fetch.Fetcher) []Adapter {
	return []Adapter{
		uk.New(f),
		germany.New(f),
		austria.New(f),
		italy.New(f),
		netherlands.New(f),
		latvia.New(f),
		estonia.New(f),
		lithuania.New(f),
		eu.New(f),
	}
}
