// Package italy parses the Camera dei Deputati's register of donations above
// €500. The register is an HTML table grouped by recipient: a single-cell
// row (or a row whose first cell carries a leading "•" marker) names the
// party, and the following rows are that party's donors until the next
// group row.
package italy

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/money"
	"github.com/donortrail/donortrail/internal/query"
)

const defaultRegisterURL = "https://www.camera.it/leg19/1231?shadow_organo_organismo=2551"

// Adapter implements jurisdiction.Adapter for Italy.
type Adapter struct {
	Fetcher     fetch.Fetcher
	RegisterURL string
}

// New creates the Italy adapter.
func New(f fetch.Fetcher) *Adapter {
	return &Adapter{Fetcher: f, RegisterURL: defaultRegisterURL}
}

// Info implements jurisdiction.Adapter.
func (a *Adapter) Info() model.SourceInfo {
	return model.SourceInfo{
		ID:        "italy",
		Name:      "Italian Chamber of Deputies",
		URL:       "https://www.camera.it",
		Coverage:  "2019-present",
		Threshold: "€500 (annual register)",
		Currency:  "EUR",
	}
}

// Search implements jurisdiction.Adapter.
func (a *Adapter) Search(ctx context.Context, _ query.Query, lookbackYears int) model.ResultSet {
	rs := model.ResultSet{Source: a.Info()}

	body, err := a.Fetcher.Get(ctx, a.RegisterURL)
	if err != nil {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("Camera register unavailable: %v", err))
		return rs
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("Camera register is not parseable HTML: %v", err))
		return rs
	}

	cutoffYear := time.Now().Year() - lookbackYears
	currentParty := ""

	doc.Find("table").First().Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td, th")

		// Group rows name the recipient party for all rows that follow.
		if label, ok := groupLabel(cells); ok {
			currentParty = label
			return
		}
		if cells.Length() < 3 || currentParty == "" {
			return
		}

		donor := strings.TrimSpace(cells.Eq(0).Text())
		amountText := strings.TrimSpace(cells.Eq(1).Text())
		dateText := strings.TrimSpace(cells.Eq(2).Text())
		if donor == "" || strings.EqualFold(donor, "Soggetto erogante") {
			return
		}

		amount, err := money.ParseContinental(amountText)
		if err != nil {
			rs.Warnings = append(rs.Warnings, fmt.Sprintf("Camera row for %q dropped: %v", donor, err))
			return
		}

		rec := model.Donation{
			Donor:     donor,
			DonorFull: donor,
			Party:     currentParty,
			Amount:    amount,
			Currency:  "EUR",
			Source:    "Italian Chamber of Deputies",
		}
		if date, err := time.Parse("02/01/2006", dateText); err == nil {
			if date.Year() < cutoffYear {
				return
			}
			rec.Period = date.Format("2006-01-02")
			rec.Year = date.Year()
		}
		rs.Records = append(rs.Records, rec)
	})

	return rs
}

// groupLabel reports whether the row is a party group header: a single cell,
// or a first cell carrying the register's leading "•" marker.
func groupLabel(cells *goquery.Selection) (string, bool) {
	if cells.Length() == 1 {
		label := strings.TrimSpace(cells.First().Text())
		if label != "" {
			return label, true
		}
		return "", false
	}
	first := strings.TrimSpace(cells.First().Text())
	if strings.HasPrefix(first, "•") {
		return strings.TrimSpace(strings.TrimPrefix(first, "•")), true
	}
	return "", false
}
