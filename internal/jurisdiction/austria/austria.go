// Package austria parses the Rechnungshof's published list of party
// donations above the immediate-disclosure threshold. The source is a flat
// HTML table (party, donor, amount, date) using continental number
// formatting. Rows whose amount cannot be parsed are skipped, never
// defaulted to zero.
package austria

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

const defaultListURL = "https://www.rechnungshof.gv.at/rh/home/was-wir-tun/was-wir-tun_4/Parteispenden.html"

// Adapter implements jurisdiction.Adapter for Austria.
type Adapter struct {
	Fetcher fetch.Fetcher
	ListURL string
}

// New creates the Austria adapter.
func New(f fetch.Fetcher) *Adapter {
	return &Adapter{Fetcher: f, ListURL: defaultListURL}
}

// Info implements jurisdiction.Adapter.
func (a *Adapter) Info() model.SourceInfo {
	return model.SourceInfo{
		ID:        "austria",
		Name:      "Austrian Court of Audit (Rechnungshof)",
		URL:       "https://www.rechnungshof.gv.at",
		Coverage:  "2019-present",
		Threshold: "€2,500 (immediate disclosure)",
		Currency:  "EUR",
	}
}

// Search implements jurisdiction.Adapter.
func (a *Adapter) Search(ctx context.Context, _ query.Query, lookbackYears int) model.ResultSet {
	rs := model.ResultSet{Source: a.Info()}

	body, err := a.Fetcher.Get(ctx, a.ListURL)
	if err != nil {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("Rechnungshof list unavailable: %v", err))
		return rs
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("Rechnungshof page is not parseable HTML: %v", err))
		return rs
	}

	cutoffYear := time.Now().Year() - lookbackYears
	skipped := 0

	doc.Find("table").First().Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return // column header or filler row
		}

		party := strings.TrimSpace(cells.Eq(0).Text())
		donor := strings.TrimSpace(cells.Eq(1).Text())
		amountText := strings.TrimSpace(cells.Eq(2).Text())
		dateText := strings.TrimSpace(cells.Eq(3).Text())
		if donor == "" {
			return
		}

		amount, err := money.ParseContinental(amountText)
		if err != nil {
			skipped++
			return
		}

		rec := model.Donation{
			Donor:     donor,
			DonorFull: donor,
			Party:     party,
			Amount:    amount,
			Currency:  "EUR",
			Source:    "Austrian Court of Audit",
		}
		if date, err := time.Parse("02.01.2006", dateText); err == nil {
			if date.Year() < cutoffYear {
				return
			}
			rec.Period = date.Format("2006-01-02")
			rec.Year = date.Year()
		}
		rs.Records = append(rs.Records, rec)
	})

	if skipped > 0 {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("Austria: %d rows with unparseable amounts skipped", skipped))
	}
	return rs
}
