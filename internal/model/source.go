package model

// SourceInfo describes one jurisdiction's disclosure regime. It drives the
// sources command and the methodology sheet of the exported report.
type SourceInfo struct {
	ID        string // short stable identifier, e.g. "uk", "germany"
	Name      string // e.g. "UK Electoral Commission"
	URL       string
	Coverage  string // e.g. "2001-present"
	Threshold string // legal disclosure threshold, human readable
	Currency  string // "GBP" or "EUR"
	Notes     string
}

// ResultSet is one jurisdiction's outcome for a search. An empty Records
// slice is a valid, non-error outcome: source unreachable, no matches, or
// nothing disclosed in the window.
type ResultSet struct {
	Source   SourceInfo
	Records  []Donation
	Degraded bool // true when the adapter fell back to an embedded snapshot
	Warnings []string
}

// Total sums record amounts. All records in a set share one currency, so the
// sum is meaningful without conversion.
func (rs *ResultSet) Total() float64 {
	var total float64
	for _, r := range rs.Records {
		total += r.Amount
	}
	return total
}

// PartyCount returns the number of distinct recipient parties in the set.
func (rs *ResultSet) PartyCount() int {
	parties := make(map[string]bool)
	for _, r := range rs.Records {
		parties[r.Party] = true
	}
	return len(parties)
}

// PeriodRange returns the Period values of the earliest and latest records
// present, ordered by Year first and lexically by Period within a year (date
// granularities are emitted as ISO dates, so this sorts correctly). Empty
// strings are returned for an empty set.
func (rs *ResultSet) PeriodRange() (minPeriod, maxPeriod string) {
	first := true
	var minYear, maxYear int
	for _, r := range rs.Records {
		if r.Period == "" {
			continue
		}
		if first {
			minYear, maxYear = r.Year, r.Year
			minPeriod, maxPeriod = r.Period, r.Period
			first = false
			continue
		}
		if r.Year < minYear || (r.Year == minYear && r.Period < minPeriod) {
			minYear, minPeriod = r.Year, r.Period
		}
		if r.Year > maxYear || (r.Year == maxYear && r.Period > maxPeriod) {
			maxYear, maxPeriod = r.Year, r.Period
		}
	}
	return minPeriod, maxPeriod
}
