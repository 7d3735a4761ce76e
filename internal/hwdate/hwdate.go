package hwdate

import (
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Layout is the canonical date layout of the persisted document.
const Layout = "02/01/2006"

// Fallback layouts accepted on input. Two-digit years are promoted to 20xx.
var fallbackLayouts = []string{"02/01/2006", "02/01/06", "02-01-2006", "02-01-06"}

// DefaultCacheSize bounds the parse memo table when no explicit size is given.
const DefaultCacheSize = 1000

type parseResult struct {
	t  time.Time
	ok bool
}

// Parser is a memoizing date parser. The memo table is a fixed-capacity LRU
// so repeated parsing of the same document stays cheap without unbounded
// memory growth. Failed parses are memoized too.
//
// Parser is safe for concurrent use.
type Parser struct {
	cache *lru.Cache[string, parseResult]
}

// NewParser creates a Parser whose memo table holds at most size entries.
// A non-positive size falls back to DefaultCacheSize.
func NewParser(size int) *Parser {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only errors on a non-positive size, which is excluded above.
	cache, _ := lru.New[string, parseResult](size)
	return &Parser{cache: cache}
}

// Parse parses a DD/MM/YYYY (or D/M/YYYY, or dash-separated, or two-digit
// year) date string. It returns the parsed date and true, or the zero time
// and false when the string is not a recognizable date.
func (p *Parser) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if r, hit := p.cache.Get(s); hit {
		return r.t, r.ok
	}

	t, ok := parse(s)
	p.cache.Add(s, parseResult{t: t, ok: ok})
	return t, ok
}

// Normalize canonicalizes a date string to the DD/MM/YYYY layout, so that
// "1/2/2025" and "01/02/2025" compare equal. Unparseable input is returned
// unchanged.
func (p *Parser) Normalize(s string) string {
	if t, ok := p.Parse(s); ok {
		return Format(t)
	}
	return s
}

// Purge empties the memo table.
func (p *Parser) Purge() {
	p.cache.Purge()
}

// Format renders a date in the canonical DD/MM/YYYY layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

func parse(s string) (time.Time, bool) {
	// Fast path: slash-separated day/month/year integers.
	if parts := strings.Split(s, "/"); len(parts) == 3 {
		day, errD := strconv.Atoi(parts[0])
		month, errM := strconv.Atoi(parts[1])
		year, errY := strconv.Atoi(parts[2])
		if errD == nil && errM == nil && errY == nil {
			if year < 100 {
				year += 2000
			}
			if t, ok := makeDate(year, month, day); ok {
				return t, true
			}
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// makeDate builds a date and rejects out-of-range components, which
// time.Date would otherwise silently normalize (e.g. 32/01 -> 01/02).
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}
