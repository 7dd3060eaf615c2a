// Package tripcal resolves the concrete operating dates of a pairing from
// its effective date range, weekday mask, and exception list.
package tripcal

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"pairing_parser/internal/weekmask"
)

// monthNum maps the three-letter month abbreviations used by scheduling
// systems to calendar month numbers.
var monthNum = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

var (
	// JUL 05 - JUL 26
	dateRangeRe = regexp.MustCompile(`(?i)([A-Z]{3})\s+(\d{1,2})\s*-\s*([A-Z]{3})\s+(\d{1,2})`)

	// [1,1,1,1,1,0,0]
	bracketMaskRe = regexp.MustCompile(`\[([^\]]+)\]`)

	// YEG: 111____
	baseMaskRe = regexp.MustCompile(`\b[A-Z]{3}:\s*([0-9_]{1,7})`)

	// 111____ effective
	nearMaskRe = regexp.MustCompile(`(?i)([0-9_]{1,7})\s+effective`)

	// except JUL 12, JUL 19
	exceptionsRe = regexp.MustCompile(`(?i)except\s+(.*)`)

	// SEP 01
	monthDayRe = regexp.MustCompile(`(?i)([A-Z]{3})\s+(\d{1,2})`)
)

// effectiveWindow is how far around the word "effective" the range, mask,
// and exception clauses are searched for.
const effectiveWindow = 200

// EffectiveYear decides which calendar year a block's dates belong to.
// The first <MON> <DD> pair in the block is tested against the reference
// date: a January date seen in December belongs to next year, as does any
// candidate date that already lies in the past.
func EffectiveYear(block string, ref time.Time) int {
	year := ref.Year()

	m := monthDayRe.FindStringSubmatch(block)
	if m == nil {
		return year
	}
	mon, ok := monthNum[strings.ToUpper(m[1])]
	if !ok {
		return year
	}
	day, _ := strconv.Atoi(m[2])

	if mon == time.January && ref.Month() == time.December {
		return year + 1
	}

	candidate := time.Date(year, mon, day, 0, 0, 0, 0, time.UTC)
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	if candidate.Before(refDay) {
		return year + 1
	}
	return year
}

// OperatingDates resolves the ascending list of ISO dates a pairing operates
// on. It locates the first "effective" in the block, scans a fixed window
// around it for the date range, weekday mask, and exception clause, and
// filters the range by both. A block with no resolvable range yields an
// empty list; that is not an error.
func OperatingDates(block string, effectiveYear int) []string {
	idx := strings.Index(strings.ToLower(block), "effective")
	if idx == -1 {
		return nil
	}
	lo := idx - effectiveWindow
	if lo < 0 {
		lo = 0
	}
	hi := idx + effectiveWindow
	if hi > len(block) {
		hi = len(block)
	}
	window := block[lo:hi]

	m := dateRangeRe.FindStringSubmatch(window)
	if m == nil {
		return nil
	}
	startMon, ok1 := monthNum[strings.ToUpper(m[1])]
	endMon, ok2 := monthNum[strings.ToUpper(m[3])]
	if !ok1 || !ok2 {
		return nil
	}
	startDay, _ := strconv.Atoi(m[2])
	endDay, _ := strconv.Atoi(m[4])

	start, ok1 := makeDate(effectiveYear, startMon, startDay)
	end, ok2 := makeDate(effectiveYear, endMon, endDay)
	if !ok1 || !ok2 {
		return nil
	}
	if end.Before(start) {
		// The range crosses a year boundary.
		end, ok2 = makeDate(effectiveYear+1, endMon, endDay)
		if !ok2 {
			return nil
		}
	}

	mask := resolveMask(window)
	exceptions := resolveExceptions(window, effectiveYear, start, end)

	var dates []string
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		if mask[mondayWeekday(cur)] && !exceptions[cur] {
			dates = append(dates, cur.Format("2006-01-02"))
		}
	}
	return dates
}

// resolveMask tries the mask sources in priority order: bracketed binary,
// "<BASE>: <mask>", "<mask> effective", then every day active.
func resolveMask(window string) weekmask.Mask {
	if m := bracketMaskRe.FindStringSubmatch(window); m != nil {
		if mask, ok := weekmask.ParseBracket(m[1]); ok {
			return mask
		}
	}
	if m := baseMaskRe.FindStringSubmatch(window); m != nil {
		if mask, ok := weekmask.ParseFiller(m[1]); ok {
			return mask
		}
	}
	if m := nearMaskRe.FindStringSubmatch(window); m != nil {
		if mask, ok := weekmask.ParseFiller(m[1]); ok {
			return mask
		}
	}
	return weekmask.AllDays()
}

// resolveExceptions extracts every <MON> <DD> in an "except ..." clause,
// interpreted in both the effective year and the year after, keeping only
// dates inside [start, end].
func resolveExceptions(window string, effectiveYear int, start, end time.Time) map[time.Time]bool {
	exceptions := make(map[time.Time]bool)
	m := exceptionsRe.FindStringSubmatch(window)
	if m == nil {
		return exceptions
	}
	for _, pair := range monthDayRe.FindAllStringSubmatch(m[1], -1) {
		mon, ok := monthNum[strings.ToUpper(pair[1])]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(pair[2])
		for _, year := range []int{effectiveYear, effectiveYear + 1} {
			d, ok := makeDate(year, mon, day)
			if ok && !d.Before(start) && !d.After(end) {
				exceptions[d] = true
			}
		}
	}
	return exceptions
}

// mondayWeekday converts time.Weekday (Sunday=0) to the document convention
// (Monday=0 .. Sunday=6).
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// makeDate builds a date and rejects day numbers that do not exist in the
// month (time.Date would silently normalize them into the next month).
func makeDate(year int, mon time.Month, day int) (time.Time, bool) {
	d := time.Date(year, mon, day, 0, 0, 0, 0, time.UTC)
	if d.Month() != mon || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
