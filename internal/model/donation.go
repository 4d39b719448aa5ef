// Package model defines the canonical donation record shared by every
// jurisdiction adapter, along with source metadata and result sets.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Donation is the normalized donation record produced by every adapter.
//
// Donor holds the cleaned display name; DonorFull keeps the raw source text
// (which may embed address or registry fragments) and is the field boolean
// search matches against, so truncated display names never cause false
// negatives.
type Donation struct {
	Donor     string
	DonorFull string
	Party     string
	Amount    float64
	Currency  string // "GBP" or "EUR", fixed per jurisdiction
	Period    string // native granularity: a date, a year, or a year-quarter
	Year      int
	Source    string // human-readable provenance, e.g. "UK Electoral Commission"

	// Optional fields, populated only where the source provides them.
	Month        string // group label carried forward from the source table
	DonorType    string
	DonationType string
	Nature       string
	Country      string
	Location     string
	RegNumber    string
	Reference    string // source-native unique ID, e.g. UK ECRef
}

// Key returns the deduplication key for this record: the source reference
// when the source exposes one, otherwise a hash of donor+party+amount+year.
func (d *Donation) Key() string {
	if d.Reference != "" {
		return d.Reference
	}
	data := fmt.Sprintf("%s:%s:%.2f:%d",
		strings.ToLower(d.DonorFull),
		strings.ToLower(d.Party),
		d.Amount,
		d.Year)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Dedupe removes records sharing a Key, keeping the first occurrence and
// preserving input order.
func Dedupe(records []Donation) []Donation {
	seen := make(map[string]bool, len(records))
	out := make([]Donation, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
