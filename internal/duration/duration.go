// Package duration converts between crew-scheduling duration tokens and minutes.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NotAvailable is the sentinel rendered when a duration cannot be formatted.
const NotAvailable = "N/A"

var (
	// (dead head), (appx) and similar qualifiers embedded in tokens.
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)

	// 25h30, 3h45, 12h
	hoursMinutesRe = regexp.MustCompile(`(?i)^(\d+)\s*h\s*(\d{1,2})?`)

	// Strict fallback: 103h05
	strictHMRe = regexp.MustCompile(`(?i)^\d{1,3}h\d{2}$`)
)

// Parse converts a free-form duration token to total minutes.
// Accepted forms, tried in order: "<N>h<MM>"/"<N>h", strict "\d{1,3}h\d{2}",
// "HH:MM", and a bare integer already expressed in minutes. Parenthetical
// annotations are stripped before matching.
func Parse(token string) (int, error) {
	if token == "" {
		return 0, fmt.Errorf("empty duration token")
	}
	s := strings.TrimSpace(parentheticalRe.ReplaceAllString(token, ""))

	if m := hoursMinutesRe.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes := 0
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2])
		}
		return hours*60 + minutes, nil
	}

	if strictHMRe.MatchString(s) {
		parts := strings.SplitN(strings.ToLower(s), "h", 2)
		hours, _ := strconv.Atoi(parts[0])
		minutes, _ := strconv.Atoi(parts[1])
		return hours*60 + minutes, nil
	}

	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		hours, herr := strconv.Atoi(parts[0])
		minutes, merr := strconv.Atoi(parts[1])
		if herr == nil && merr == nil {
			return hours*60 + minutes, nil
		}
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	return 0, fmt.Errorf("could not parse duration token: %q", token)
}

// Format renders minutes as "<hours>h<minutes:02d>", e.g. 1530 -> "25h30".
// Negative input yields the NotAvailable sentinel; Format never fails.
func Format(totalMinutes int) string {
	if totalMinutes < 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%dh%02d", totalMinutes/60, totalMinutes%60)
}
