package eu

import (
	"embed"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/money"
)

// The snapshot is a static data asset versioned independently of the
// adapter: regenerating it from a newer APPF publication does not touch any
// parsing logic.
//
//go:embed data/donations_snapshot.csv
var snapshotFS embed.FS

const snapshotPath = "data/donations_snapshot.csv"

// loadSnapshot parses the embedded APPF snapshot, keeping records from
// cutoffYear onwards. Columns: year, party, donor, country, amount.
func loadSnapshot(cutoffYear int) ([]model.Donation, error) {
	f, err := snapshotFS.Open(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 5

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading snapshot header: %w", err)
	}

	var records []model.Donation
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}

		year, err := strconv.Atoi(row[0])
		if err != nil || year < cutoffYear {
			continue
		}
		amount, err := money.ParseUK(row[4])
		if err != nil {
			continue
		}

		records = append(records, model.Donation{
			Donor:     row[2],
			DonorFull: row[2],
			Party:     row[1],
			Amount:    amount,
			Currency:  "EUR",
			Country:   row[3],
			Year:      year,
			Period:    strconv.Itoa(year),
			Source:    sourceLabel,
		})
	}
	return records, nil
}
