package tui

import (
	"github.com/donortrail/donortrail/internal/model"
)

// searchStartedMsg fires when a submitted query begins running against the
// jurisdiction adapters.
type searchStartedMsg struct {
	raw string
}

// searchDoneMsg carries the filtered result sets of a completed search.
type searchDoneMsg struct {
	results []model.ResultSet
}

// searchFailedMsg carries a query parse or execution error.
type searchFailedMsg struct {
	err error
}

// exportDoneMsg reports the outcome of an xlsx export.
type exportDoneMsg struct {
	path string
	err  error
}
