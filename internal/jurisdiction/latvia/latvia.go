// Package latvia scrapes the KNAB party-financing database. The listing is
// paginated with no advertised total: pages are fetched one by one with a
// polite delay until a page yields no rows or the next-page control
// disappears. A failure partway through keeps the pages already gathered;
// a partial result beats an empty one.
//
// Donor cells suffix the registry number (companies) or a masked personal
// code to the name; the suffix is split off into RegNumber so the display
// name stays clean while the raw text remains searchable.
package latvia

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/money"
	"github.com/donortrail/donortrail/internal/query"
)

const defaultBaseURL = "https://info.knab.gov.lv/lv/db/ziedojumi"

// maxPages is a hard stop against a listing that never runs dry.
const maxPages = 50

// pageDelay spaces out page requests.
const pageDelay = 500 * time.Millisecond

// regNumberRe captures a trailing registry number or masked personal code
// in parentheses or after a comma, e.g. "SIA Latio (40003123456)".
var regNumberRe = regexp.MustCompile(`^(..*?)\s*[,(]\s*([0-9][0-9\-]{4,})\s*\)?$`)

// Adapter implements jurisdiction.Adapter for Latvia.
type Adapter struct {
	Fetcher   fetch.Fetcher
	BaseURL   string
	PageDelay time.Duration
}

// New creates the Latvia adapter.
func New(f fetch.Fetcher) *Adapter {
	return &Adapter{Fetcher: f, BaseURL: defaultBaseURL, PageDelay: pageDelay}
}

// Info implements jurisdiction.Adapter.
func (a *Adapter) Info() model.SourceInfo {
	return model.SourceInfo{
		ID:        "latvia",
		Name:      "Latvian Corruption Prevention Bureau (KNAB)",
		URL:       "https://info.knab.gov.lv",
		Coverage:  "2002-present",
		Threshold: "all donations (full disclosure)",
		Currency:  "EUR",
	}
}

// Search implements jurisdiction.Adapter.
func (a *Adapter) Search(ctx context.Context, _ query.Query, lookbackYears int) model.ResultSet {
	rs := model.ResultSet{Source: a.Info()}
	cutoffYear := time.Now().Year() - lookbackYears

	for page := 1; page <= maxPages; page++ {
		if page > 1 {
			fetch.Delay(ctx, a.PageDelay)
		}

		pageURL := fmt.Sprintf("%s?page=%d", a.BaseURL, page)
		body, err := a.Fetcher.Get(ctx, pageURL)
		if err != nil {
			// Keep what earlier pages produced.
			rs.Warnings = append(rs.Warnings,
				fmt.Sprintf("KNAB page %d failed, returning %d records from earlier pages: %v", page, len(rs.Records), err))
			return rs
		}

		records, hasNext, warnings := parsePage(body, cutoffYear)
		rs.Warnings = append(rs.Warnings, warnings...)
		if len(records) == 0 {
			break
		}
		rs.Records = append(rs.Records, records...)
		if !hasNext {
			break
		}
	}
	return rs
}

func parsePage(body []byte, cutoffYear int) (records []model.Donation, hasNext bool, warnings []string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, false, []string{fmt.Sprintf("KNAB page is not parseable HTML: %v", err)}
	}

	doc.Find("table").First().Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		donorRaw := strings.TrimSpace(cells.Eq(0).Text())
		party := strings.TrimSpace(cells.Eq(1).Text())
		amountText := strings.TrimSpace(cells.Eq(2).Text())
		dateText := strings.TrimSpace(cells.Eq(3).Text())
		if donorRaw == "" {
			return
		}

		amount, err := money.ParseContinental(amountText)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("KNAB row for %q dropped: %v", donorRaw, err))
			return
		}

		donor, regNumber := splitRegNumber(donorRaw)
		rec := model.Donation{
			Donor:     donor,
			DonorFull: donorRaw,
			Party:     party,
			Amount:    amount,
			Currency:  "EUR",
			RegNumber: regNumber,
			Source:    "Latvian Corruption Prevention Bureau",
		}
		if date, err := time.Parse("02.01.2006", dateText); err == nil {
			if date.Year() < cutoffYear {
				return
			}
			rec.Period = date.Format("2006-01-02")
			rec.Year = date.Year()
		}
		records = append(records, rec)
	})

	hasNext = doc.Find("a[rel='next'], .pagination .next a").Length() > 0
	return records, hasNext, warnings
}

func splitRegNumber(raw string) (donor, regNumber string) {
	if m := regNumberRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	return raw, ""
}
