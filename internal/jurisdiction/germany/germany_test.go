package germany

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donortrail/donortrail/internal/common"
)

type fakeFetcher struct {
	pages map[string][]byte
}

func (f *fakeFetcher) Get(_ context.Context, url string) ([]byte, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, common.ErrSourceUnavailable
	}
	return body, nil
}

const yearPage = `<html><body>
<table>
<tr><th>Partei</th><th>Betrag</th><th>Spender</th><th>Eingang</th></tr>
<tr><td>Januar</td></tr>
<tr><td>CDU</td><td>150.000,00 Euro</td><td>Verein für AufbruchMaximilianstr. 2, 80539 München</td><td>05.01.2024</td></tr>
<tr><td>SPD</td><td>60.000,00 Euro</td><td>Christian Müller8010 Graz</td><td>12.01.2024</td></tr>
<tr><td>Februar</td></tr>
<tr><td>FDP</td><td>75.500,00 Euro</td><td>Beispiel Holding e.V.Löffelstr. 22, 70597 Stuttgart</td><td>02.02.2024</td></tr>
<tr><td>AfD</td><td>keine Angabe</td><td>Unbekannt GmbH</td><td>03.02.2024</td></tr>
</table>
</body></html>`

func TestSearchParsesGroupedTable(t *testing.T) {
	year := time.Now().Year()
	a := New(&fakeFetcher{pages: map[string][]byte{
		"https://example.org/" + fmt.Sprint(year): []byte(yearPage),
	}})
	a.YearURLs = map[int]string{year: "https://example.org/" + fmt.Sprint(year)}

	rs := a.Search(context.Background(), nil, 1)

	require.Len(t, rs.Records, 3, "row without a parseable amount is dropped")

	// Month group labels carry forward to every following data row.
	assert.Equal(t, "Januar", rs.Records[0].Month)
	assert.Equal(t, "Januar", rs.Records[1].Month)
	assert.Equal(t, "Februar", rs.Records[2].Month)

	first := rs.Records[0]
	assert.Equal(t, "CDU", first.Party)
	assert.InDelta(t, 150000.00, first.Amount, 0.001)
	assert.Equal(t, "EUR", first.Currency)
	assert.Equal(t, "2024-01-05", first.Period)

	// Display name is split off from the appended address; the raw text
	// is preserved for search matching.
	assert.Equal(t, "Verein für Aufbruch", first.Donor)
	assert.Equal(t, "Verein für AufbruchMaximilianstr. 2, 80539 München", first.DonorFull)

	// The dropped row is reported, not silently swallowed.
	require.NotEmpty(t, rs.Warnings)
}

func TestSearchUnreachableYearIsSoftWarning(t *testing.T) {
	a := New(&fakeFetcher{pages: map[string][]byte{}})
	a.YearURLs = map[int]string{time.Now().Year(): "https://example.org/missing"}

	rs := a.Search(context.Background(), nil, 1)
	assert.Empty(t, rs.Records)
	assert.NotEmpty(t, rs.Warnings)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "lowercase to uppercase boundary", raw: "Verein für AufbruchMaximilianstr. 2", want: "Verein für Aufbruch"},
		{name: "lowercase to digit boundary", raw: "Christian Müller8010 Graz", want: "Christian Müller"},
		{name: "period to uppercase boundary", raw: "Beispiel Holding e.V.Löffelstr. 22", want: "Beispiel Holding e.V."},
		{name: "dotted abbreviation without address", raw: "Musikverein Harmonie e.V.", want: "Musikverein Harmonie e.V."},
		{name: "abbreviation then street name", raw: "Landesverband Nord e.V.Hafenweg 7", want: "Landesverband Nord e.V."},
		{name: "no address appended", raw: "Einfacher Spender", want: "Einfacher Spender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayName(tt.raw))
		})
	}
}
