package extract

import (
	"strconv"
	"time"

	"pairing_parser/internal/duration"
	"pairing_parser/internal/pairing"
)

// redeyeMinute is 02:00 local expressed in minutes since midnight. A leg
// whose departure/arrival interval contains this instant marks the trip as
// a redeye.
const redeyeMinute = 2 * 60

// calendarDateFormat renders calendar entries like "Mon 06 Jul".
const calendarDateFormat = "Mon 02 Jan"

// computeDerived fills in every classification that is a pure function of
// the already-extracted structure: layover maxima, per-day credit, the
// per-instance calendar, and the boolean trip flags.
func computeDerived(trip *pairing.Trip, block string) {
	trip.LongestLayover = longestLayoverHours(trip.Layovers)

	days := sortedDayNumbers(trip.Days)
	if len(days) > 0 {
		trip.DaysOfWork = days[len(days)-1]
	}

	if trip.CreditMinutes > 0 && trip.DaysOfWork > 0 {
		trip.CreditTimePerDay = round2(float64(trip.CreditMinutes) / float64(trip.DaysOfWork) / 60.0)
	}

	trip.Calendar = buildCalendar(trip.OperatingDates, days)

	trip.IsRedeye = isRedeye(trip)
	trip.IsLazyPairing = isLazyPairing(trip)
	trip.IsWeekdayOnly = isWeekdayOnly(trip.OperatingDates, days)

	extractReportRelease(trip, block)
	trip.IsCommutable = isCommutable(trip)
}

func longestLayoverHours(layovers []pairing.Layover) float64 {
	longest := 0
	for _, lay := range layovers {
		minutes, err := duration.Parse(lay.Duration)
		if err != nil {
			continue
		}
		if minutes > longest {
			longest = minutes
		}
	}
	if longest == 0 {
		return 0.0
	}
	return round2(float64(longest) / 60.0)
}

// buildCalendar maps, for each operating-date instance, each day-of-trip to
// its human-readable date. Day 1 is the operating date itself.
func buildCalendar(operatingDates []string, days []int) []map[string]string {
	calendar := []map[string]string{}
	if len(operatingDates) == 0 || len(days) == 0 {
		return calendar
	}
	for _, iso := range operatingDates {
		start, err := time.Parse("2006-01-02", iso)
		if err != nil {
			continue
		}
		instance := make(map[string]string, len(days))
		for _, day := range days {
			instance[strconv.Itoa(day)] = start.AddDate(0, 0, day-1).Format(calendarDateFormat)
		}
		calendar = append(calendar, instance)
	}
	return calendar
}

// isRedeye reports whether a multi-day trip with at least one layover has a
// leg airborne at 02:00 local. Legs that cross midnight (departure time
// numerically after arrival time) contain 02:00 when either side does.
func isRedeye(trip *pairing.Trip) bool {
	if trip.DaysOfWork <= 1 || len(trip.Layovers) == 0 {
		return false
	}
	for _, legs := range trip.Days {
		for _, leg := range legs {
			dep, depOK := clockMinutes(leg.DepTime)
			arr, arrOK := clockMinutes(leg.ArrTime)
			if !depOK || !arrOK {
				continue
			}
			var includes bool
			if dep <= arr {
				includes = dep <= redeyeMinute && redeyeMinute <= arr
			} else {
				includes = arr >= redeyeMinute || dep <= redeyeMinute
			}
			if includes {
				return true
			}
		}
	}
	return false
}

// isLazyPairing reports a multi-day trip where no day has more than one leg.
func isLazyPairing(trip *pairing.Trip) bool {
	if trip.DaysOfWork <= 1 {
		return false
	}
	for _, legs := range trip.Days {
		if len(legs) > 1 {
			return false
		}
	}
	return true
}

// isWeekdayOnly reports whether every concrete duty date across every
// operating instance falls on Monday-Friday. No resolvable calendar means
// false, not unknown.
func isWeekdayOnly(operatingDates []string, days []int) bool {
	if len(operatingDates) == 0 || len(days) == 0 {
		return false
	}
	for _, iso := range operatingDates {
		start, err := time.Parse("2006-01-02", iso)
		if err != nil {
			return false
		}
		for _, day := range days {
			wd := start.AddDate(0, 0, day-1).Weekday()
			if wd == time.Saturday || wd == time.Sunday {
				return false
			}
		}
	}
	return true
}

// extractReportRelease captures RPT/RLS times when present.
func extractReportRelease(trip *pairing.Trip, block string) {
	if m := reportRe.FindStringSubmatch(block); m != nil {
		trip.ReportTime = m[1]
		if minutes, err := duration.Parse(m[1]); err == nil {
			trip.ReportMinutes = minutes
		}
	}
	if m := releaseRe.FindStringSubmatch(block); m != nil {
		trip.ReleaseTime = m[1]
		if minutes, err := duration.Parse(m[1]); err == nil {
			trip.ReleaseMinutes = minutes
		}
	}
}

// isCommutable: a 3-5 day trip reporting after 11:00 and releasing before
// 22:30 can be commuted to from out of base.
func isCommutable(trip *pairing.Trip) bool {
	if trip.DaysOfWork < 3 || trip.DaysOfWork > 5 {
		return false
	}
	if trip.ReportTime == "" || trip.ReleaseTime == "" {
		return false
	}
	return trip.ReportMinutes > 11*60 && trip.ReleaseMinutes < 22*60+30
}

// clockMinutes converts a leading "HH:MM" to minutes since midnight.
func clockMinutes(s string) (int, bool) {
	m := timePairRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return hours*60 + minutes, true
}
