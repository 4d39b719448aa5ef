// Package germany scrapes large-donation disclosures from the Bundestag
// website. Each year is one HTML page whose first table mixes two row kinds:
// single-cell month headers that apply to every following row, and four-cell
// data rows (party, amount, donor, date received). The donor cell embeds the
// donor's address directly after the name, so the display name is split off
// while the raw text is kept for search matching.
package germany

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/money"
	"github.com/donortrail/donortrail/internal/query"
)

// The Bundestag publishes each year under a URL with a content ID that
// changes per year; there is no stable pattern to derive them from.
var yearURLs = map[int]string{
	2025: "https://www.bundestag.de/parlament/praesidium/parteienfinanzierung/fundstellen50000/2025/2025-inhalt-1032412",
	2024: "https://www.bundestag.de/parlament/praesidium/parteienfinanzierung/fundstellen50000/2024/2024-inhalt-984862",
	2023: "https://www.bundestag.de/parlament/praesidium/parteienfinanzierung/fundstellen50000/2023",
	2022: "https://www.bundestag.de/parlament/praesidium/parteienfinanzierung/fundstellen50000/2022/2022-inhalt-879480",
	2021: "https://www.bundestag.de/parlament/praesidium/parteienfinanzierung/fundstellen50000/2021/2021-inhalt-816896",
	2020: "https://www.bundestag.de/parlament/praesidium/parteienfinanzierung/fundstellen50000/2020/2020-inhalt-678704",
}

var amountRe = regexp.MustCompile(`([\d.,]+)\s*Euro`)

// Adapter implements jurisdiction.Adapter for Germany.
type Adapter struct {
	Fetcher  fetch.Fetcher
	YearURLs map[int]string
}

// New creates the Germany adapter.
func New(f fetch.Fetcher) *Adapter {
	return &Adapter{Fetcher: f, YearURLs: yearURLs}
}

// Info implements jurisdiction.Adapter.
func (a *Adapter) Info() model.SourceInfo {
	return model.SourceInfo{
		ID:        "germany",
		Name:      "German Bundestag",
		URL:       "https://www.bundestag.de/parlament/parteienfinanzierung",
		Coverage:  "2002-present (immediate disclosure)",
		Threshold: "€35,000 (immediate, since March 2024; €50,000 before)",
		Currency:  "EUR",
		Notes:     "Scraped from official Bundestag parliamentary publications",
	}
}

// Search implements jurisdiction.Adapter.
func (a *Adapter) Search(ctx context.Context, _ query.Query, lookbackYears int) model.ResultSet {
	rs := model.ResultSet{Source: a.Info()}

	currentYear := time.Now().Year()
	for year := currentYear; year >= currentYear-lookbackYears; year-- {
		pageURL, ok := a.YearURLs[year]
		if !ok {
			continue
		}
		body, err := a.Fetcher.Get(ctx, pageURL)
		if err != nil {
			rs.Warnings = append(rs.Warnings, fmt.Sprintf("Bundestag %d page unavailable: %v", year, err))
			continue
		}
		records, warnings := parseYearPage(body, year)
		rs.Records = append(rs.Records, records...)
		rs.Warnings = append(rs.Warnings, warnings...)
	}
	return rs
}

func parseYearPage(body []byte, year int) ([]model.Donation, []string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, []string{fmt.Sprintf("Bundestag %d page is not parseable HTML: %v", year, err)}
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, []string{fmt.Sprintf("Bundestag %d page has no donations table", year)}
	}

	var records []model.Donation
	var warnings []string
	currentMonth := ""

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // column header
		}
		cells := row.Find("td, th")

		// A single-cell row is a month header that applies to every
		// following data row until the next one.
		if cells.Length() == 1 {
			currentMonth = strings.TrimSpace(cells.First().Text())
			return
		}
		if cells.Length() < 4 {
			return
		}

		party := cellText(cells, 0)
		amountText := cellText(cells, 1)
		donorRaw := cellText(cells, 2)
		received := cellText(cells, 3)

		m := amountRe.FindStringSubmatch(amountText)
		if m == nil {
			warnings = append(warnings, fmt.Sprintf("Bundestag %d row for %q dropped: no amount in %q", year, donorRaw, amountText))
			return
		}
		amount, err := money.ParseContinental(m[1])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Bundestag %d row for %q dropped: %v", year, donorRaw, err))
			return
		}

		donor := displayName(donorRaw)
		if donor == "" {
			return
		}

		rec := model.Donation{
			Donor:     donor,
			DonorFull: donorRaw,
			Party:     party,
			Amount:    amount,
			Currency:  "EUR",
			Year:      year,
			Month:     currentMonth,
			Source:    "German Bundestag",
		}
		if date, err := time.Parse("02.01.2006", received); err == nil {
			rec.Period = date.Format("2006-01-02")
		} else {
			rec.Period = fmt.Sprintf("%d %s", year, currentMonth)
		}
		records = append(records, rec)
	})

	return records, warnings
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}

// displayName cuts the donor cell at the point where the name runs into the
// appended address: a lowercase letter followed directly by an uppercase
// letter or digit, or a period followed directly by an uppercase letter.
// An uppercase letter that is itself followed by a period is the next segment
// of a dotted abbreviation such as "e.V." and never starts the address.
func displayName(raw string) string {
	runes := []rune(raw)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		switch {
		case unicode.IsLower(prev) && (unicode.IsUpper(cur) || unicode.IsDigit(cur)):
			return strings.TrimSpace(string(runes[:i]))
		case prev == '.' && unicode.IsUpper(cur):
			if i+1 < len(runes) && runes[i+1] == '.' {
				continue
			}
			return strings.TrimSpace(string(runes[:i]))
		}
	}
	return strings.TrimSpace(raw)
}
