// Package extract recovers the fields of a single pairing block: header
// identifiers, TAFB, credit time, per diem, flight legs, layovers, and the
// derived classifications computed from them.
package extract

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"pairing_parser/internal/duration"
	"pairing_parser/internal/pairing"
	"pairing_parser/internal/tripcal"
)

// DeadheadDisplay replaces the flight number of any deadhead leg.
const DeadheadDisplay = "000DH"

// deadheadReference is the station that sets the specialised
// starts_with_deadhead_to_ylw flag.
const deadheadReference = "YLW"

// deadheadPrefixes classify a flight token as a deadhead. This is the longer
// list including regional and charter codes.
var deadheadPrefixes = []string{"DH", "AC", "UA", "LIM9", "AV", "VB", "AA"}

var (
	// TRIP #1234  5678  (YYC)
	tripHeadRe = regexp.MustCompile(`(?i)TRIP\s*#\s*(\S+)\s+(\S+).*?\b([A-Z]{3})\b`)

	// Relaxed fallback without a base code.
	tripHeadNoBaseRe = regexp.MustCompile(`(?i)TRIP\s*#\s*(\S+)\s+(\S+)`)

	// TAFB: 25h30
	tafbRe = regexp.MustCompile(`(?i)TAFB:\s*([\w():+]+)`)

	// Credit Time: 18h45
	creditRe = regexp.MustCompile(`(?i)Credit Time:\s*([^\s,]+)`)

	// PERDIEM: 120.00
	perDiemRe = regexp.MustCompile(`(?i)PERDIEM:\s*([\d.,]+)`)

	//  1 AC123  YYC YVR 08:00 10:00  2h00
	legRe = regexp.MustCompile(`(?i)\s+(\d{1,2})\s+([A-Z0-9_]{2,9})\s+([A-Z]{3})\s+([A-Z]{3})\s+(\d{2}:\d{2})\s+(\d{2}:\d{2})\s+([0-9]{1,3}h[0-9]{2}|[0-9]{1,2}:\d{2})`)

	// ---- YVR  HOTEL 14h25
	layoverMarkerRe = regexp.MustCompile(`(?i)----\s+([A-Z]{3})\b`)
	layoverCueRe    = regexp.MustCompile(`(?i)\b(hotel|overnight|layover)\b`)
	layoverDurRe    = regexp.MustCompile(`(?i)(\d{1,3}h\d{2})`)
	bareStationRe   = regexp.MustCompile(`\b([A-Z]{3})\b`)

	// RPT 12:05 / RLS 21:40
	reportRe  = regexp.MustCompile(`RPT.*?(\d{2}:\d{2})`)
	releaseRe = regexp.MustCompile(`RLS.*?(\d{2}:\d{2})`)

	timePairRe = regexp.MustCompile(`^(\d{2}):(\d{2})`)
)

// minLayoverMinutes filters short turn references that happen to contain a
// layover cue word from true rest periods.
const minLayoverMinutes = 8 * 60

// Options control date resolution for a block.
type Options struct {
	// ReferenceDate disambiguates year wraparound. Zero means time.Now().
	ReferenceDate time.Time

	// EffectiveYear overrides year resolution entirely when non-zero.
	EffectiveYear int
}

func (o Options) referenceDate() time.Time {
	if o.ReferenceDate.IsZero() {
		return time.Now()
	}
	return o.ReferenceDate
}

// Block extracts one Trip from a candidate block. A block whose header
// matches neither pattern yields nil; every other field failure defaults and
// extraction continues.
func Block(block string, opts Options) *pairing.Trip {
	trip := &pairing.Trip{
		Days:     make(map[string][]pairing.Leg),
		Layovers: []pairing.Layover{},
	}

	if m := tripHeadRe.FindStringSubmatch(block); m != nil {
		trip.TripNumber = m[1]
		trip.PairingNumber = m[2]
		trip.Base = strings.ToUpper(m[3])
	} else if m := tripHeadNoBaseRe.FindStringSubmatch(block); m != nil {
		trip.TripNumber = m[1]
		trip.PairingNumber = m[2]
	} else {
		return nil
	}

	trip.OriginalText = block

	trip.EffectiveYear = opts.EffectiveYear
	if trip.EffectiveYear == 0 {
		trip.EffectiveYear = tripcal.EffectiveYear(block, opts.referenceDate())
	}
	trip.OperatingDates = tripcal.OperatingDates(block, trip.EffectiveYear)

	extractLabeledFields(trip, block)
	extractLegs(trip, block)
	extractLayovers(trip, block)
	computeDerived(trip, block)

	return trip
}

// extractLabeledFields recovers TAFB, credit time, and per diem. Each is a
// single labeled-field pattern; the first match wins and an unparseable
// token leaves the derived numbers at their defaults.
func extractLabeledFields(trip *pairing.Trip, block string) {
	if m := tafbRe.FindStringSubmatch(block); m != nil {
		trip.TAFB = strings.TrimSpace(m[1])
		if minutes, err := duration.Parse(trip.TAFB); err == nil {
			trip.TAFBMinutes = minutes
		}
	}

	if m := creditRe.FindStringSubmatch(block); m != nil {
		trip.CreditTime = strings.TrimSpace(m[1])
		if minutes, err := duration.Parse(trip.CreditTime); err == nil {
			trip.CreditMinutes = minutes
			trip.CorrectedCredit = round2(float64(minutes) / 60.0)
		}
	}

	if m := perDiemRe.FindStringSubmatch(block); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			trip.PerDiem = v
			trip.CorrectedPerDiem = int(math.Ceil(v / 2.0))
		} else {
			trip.PerDiemRaw = strings.TrimSpace(m[1])
		}
	}
}

// extractLegs runs the leg pattern over the whole block, grouping legs by
// day-of-trip in document order. Deadheads are detected by carrier prefix,
// displayed under the fixed placeholder, and collected for the deadhead flags.
func extractLegs(trip *pairing.Trip, block string) {
	for _, m := range legRe.FindAllStringSubmatch(block, -1) {
		day, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		flight := strings.ToUpper(m[2])
		leg := pairing.Leg{
			Day:            day,
			OriginalFlight: flight,
			FlightNumber:   flight,
			DepStation:     strings.ToUpper(m[3]),
			ArrStation:     strings.ToUpper(m[4]),
			DepTime:        m[5],
			ArrTime:        m[6],
			Duration:       m[7],
			IsDeadhead:     isDeadhead(flight),
		}
		if leg.IsDeadhead {
			leg.FlightNumber = DeadheadDisplay
		}

		key := strconv.Itoa(day)
		trip.Days[key] = append(trip.Days[key], leg)

		if leg.IsDeadhead {
			trip.HasDeadhead = true
			trip.DeadheadLegs = append(trip.DeadheadLegs,
				leg.FlightNumber+"    "+leg.DepStation+" "+leg.ArrStation+" "+
					leg.DepTime+" "+leg.ArrTime+"  "+leg.Duration)
		}
	}

	markBoundaryDeadheads(trip)
}

// markBoundaryDeadheads records whether the trip starts (first leg of the
// earliest day) or, failing that, ends (last leg of the latest day) with a
// deadhead, plus the reference-station sub-flag for a leading deadhead.
func markBoundaryDeadheads(trip *pairing.Trip) {
	days := sortedDayNumbers(trip.Days)
	if len(days) == 0 {
		return
	}

	first := trip.Days[strconv.Itoa(days[0])]
	if len(first) > 0 && first[0].IsDeadhead {
		trip.StartsOrEndsWithDH = true
		if first[0].ArrStation == deadheadReference {
			trip.StartsWithDeadheadToYLW = true
		}
		return
	}

	last := trip.Days[strconv.Itoa(days[len(days)-1])]
	if len(last) > 0 && last[len(last)-1].IsDeadhead {
		trip.StartsOrEndsWithDH = true
	}
}

// extractLayovers scans line by line. A "---- XXX" marker with a cue word is
// recorded directly; a cue-only line falls back to any bare station code and
// keeps the layover only when its duration is at least eight hours (or is
// entirely absent, recorded as unknown).
func extractLayovers(trip *pairing.Trip, block string) {
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimRight(raw, " \t\r")

		marker := layoverMarkerRe.FindStringSubmatch(line)
		if marker != nil && layoverCueRe.MatchString(line) {
			dur := duration.NotAvailable
			if d := layoverDurRe.FindStringSubmatch(line); d != nil {
				dur = d[1]
			}
			trip.Layovers = append(trip.Layovers, pairing.Layover{
				Location: strings.ToUpper(marker[1]),
				Duration: dur,
			})
			continue
		}

		if !layoverCueRe.MatchString(line) {
			continue
		}
		station := bareStationRe.FindStringSubmatch(line)
		if station == nil {
			continue
		}
		d := layoverDurRe.FindStringSubmatch(line)
		if d == nil {
			trip.Layovers = append(trip.Layovers, pairing.Layover{
				Location: strings.ToUpper(station[1]),
				Duration: duration.NotAvailable,
			})
			continue
		}
		minutes, err := duration.Parse(d[1])
		if err != nil || minutes >= minLayoverMinutes {
			trip.Layovers = append(trip.Layovers, pairing.Layover{
				Location: strings.ToUpper(station[1]),
				Duration: d[1],
			})
		}
	}
}

func isDeadhead(flight string) bool {
	for _, prefix := range deadheadPrefixes {
		if strings.HasPrefix(flight, prefix) {
			return true
		}
	}
	return false
}

// sortedDayNumbers returns the numeric day keys in ascending order.
func sortedDayNumbers(days map[string][]pairing.Leg) []int {
	var nums []int
	for k := range days {
		if n, err := strconv.Atoi(k); err == nil {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
