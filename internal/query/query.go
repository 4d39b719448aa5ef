// Package query implements the boolean donor-search expression: parsing of
// OR / NOT keywords and evaluation against record fields. It knows nothing
// about jurisdictions; adapters and the report pipeline all filter through
// the same engine.
package query

import (
	"regexp"
	"strings"

	"github.com/donortrail/donortrail/internal/common"
	"github.com/donortrail/donortrail/internal/model"
)

// Query is a parsed boolean search expression. Immutable once built;
// constructed fresh per search submission.
type Query interface {
	// Matches reports whether the selected field text satisfies the query.
	Matches(text string) bool
	String() string
}

// Term matches records whose field contains the text as a case-insensitive
// substring. A missing (empty) field never matches.
type Term struct {
	Text string
}

// Matches implements Query.
func (t Term) Matches(text string) bool {
	if text == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(t.Text))
}

func (t Term) String() string { return t.Text }

// Not matches records whose field does NOT contain the text. A missing field
// counts as non-matching text, so it passes.
type Not struct {
	Text string
}

// Matches implements Query.
func (n Not) Matches(text string) bool {
	return !strings.Contains(strings.ToLower(text), strings.ToLower(n.Text))
}

func (n Not) String() string { return "NOT " + n.Text }

// Or matches when any subquery matches. Subquery order is the declaration
// order from the raw expression.
type Or struct {
	Queries []Query
}

// Matches implements Query.
func (o Or) Matches(text string) bool {
	for _, q := range o.Queries {
		if q.Matches(text) {
			return true
		}
	}
	return false
}

func (o Or) String() string {
	parts := make([]string, len(o.Queries))
	for i, q := range o.Queries {
		parts[i] = q.String()
	}
	return strings.Join(parts, " OR ")
}

var (
	orSplitRe    = regexp.MustCompile(`(?i)\sOR\s`)
	leadingNotRe = regexp.MustCompile(`(?i)^NOT\s+(\S.*)$`)
)

// Parse builds a Query from a raw search string.
//
// Recognized forms: a bare term; "NOT <text>" anchored at the start; and
// "<seg> OR <seg> OR ..." where each segment is parsed recursively (a NOT
// segment inside an OR list is fine). A leading NOT combined with a
// top-level OR has no defined precedence, so it is rejected with
// common.ErrUnsupportedQuery rather than guessed at.
func Parse(raw string) (Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, common.ErrEmptyQuery
	}

	hasOr := orSplitRe.MatchString(trimmed)
	notMatch := leadingNotRe.FindStringSubmatch(trimmed)

	if notMatch != nil && hasOr {
		return nil, common.ErrUnsupportedQuery
	}

	if notMatch != nil {
		return Not{Text: strings.TrimSpace(notMatch[1])}, nil
	}

	if hasOr {
		segments := orSplitRe.Split(trimmed, -1)
		queries := make([]Query, 0, len(segments))
		for _, seg := range segments {
			seg = strings.TrimSpace(seg)
			if seg == "" {
				continue
			}
			sub, err := Parse(seg)
			if err != nil {
				return nil, err
			}
			queries = append(queries, sub)
		}
		switch len(queries) {
		case 0:
			return nil, common.ErrEmptyQuery
		case 1:
			return queries[0], nil
		default:
			return Or{Queries: queries}, nil
		}
	}

	return Term{Text: trimmed}, nil
}

// Evaluate filters records through the query using the selected field. The
// relative order of surviving records is preserved; an Or never yields the
// same record twice.
func Evaluate(q Query, records []model.Donation, sel func(*model.Donation) string) []model.Donation {
	out := make([]model.Donation, 0, len(records))
	for i := range records {
		if q.Matches(sel(&records[i])) {
			out = append(out, records[i])
		}
	}
	return out
}

// DonorField selects the full/raw donor text, the field boolean search
// always matches against. Falls back to the display name for sources that
// have no separate raw variant.
func DonorField(d *model.Donation) string {
	if d.DonorFull != "" {
		return d.DonorFull
	}
	return d.Donor
}

// Terms flattens a query into the literal terms it references, in
// declaration order. Used when a remote API only accepts single-term
// queries and one call per term must be issued and merged.
func Terms(q Query) []string {
	switch v := q.(type) {
	case Term:
		return []string{v.Text}
	case Not:
		return []string{v.Text}
	case Or:
		var out []string
		for _, sub := range v.Queries {
			out = append(out, Terms(sub)...)
		}
		return out
	default:
		return nil
	}
}
