// Package segment splits a raw pairing document into candidate trip blocks.
//
// Two structural anchors exist: final pairings start at a "TRIP #" header,
// prelim pairings at a line like "YEG: 111____ effective SEP 01". Both splits
// are zero-width so each block keeps its own header.
package segment

import (
	"regexp"
	"strings"
)

var (
	// TRIP # anchor for final-style blocks.
	tripHeadRe = regexp.MustCompile(`(?i)\bTRIP\s*#`)

	// Line-start anchor for prelim-style blocks:
	// an uppercase identifier eventually followed by "effective SEP 01".
	prelimHeadRe = regexp.MustCompile(`(?im)^[ \t]*[A-Z]{3,}.*?effective\s+[A-Z]{3}\s+\d{1,2}`)

	// Leg lines qualify a prelim candidate even without TAFB/credit fields.
	legLineRe = regexp.MustCompile(`(?i)\s+(\d{1,2})\s+([A-Z0-9_]{2,9})\s+([A-Z]{3})\s+([A-Z]{3})\s+(\d{2}:\d{2})\s+(\d{2}:\d{2})\s+([0-9]{1,3}h[0-9]{2}|[0-9]{1,2}:\d{2})`)
)

// StripCoverPages drops any cover-page or disclaimer prefix: everything
// before the first "trip #" or "effective " occurrence.
func StripCoverPages(text string) string {
	lower := strings.ToLower(text)
	idx := -1
	for _, anchor := range []string{"trip #", "effective "} {
		if i := strings.Index(lower, anchor); i != -1 && (idx == -1 || i < idx) {
			idx = i
		}
	}
	if idx > 0 {
		return text[idx:]
	}
	return text
}

// splitBefore splits text at the start of every match of re, keeping the
// delimiter at the head of each piece (a zero-width lookahead split).
func splitBefore(text string, re *regexp.Regexp) []string {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	var pieces []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev || prev == 0 {
			pieces = append(pieces, text[prev:loc[0]])
		}
		prev = loc[0]
	}
	pieces = append(pieces, text[prev:])
	return pieces
}

// FinalBlocks splits the document at every TRIP # header.
func FinalBlocks(text string) []string {
	return splitBefore(text, tripHeadRe)
}

// PrelimBlocks splits a document fragment at every prelim-style header line.
func PrelimBlocks(text string) []string {
	return splitBefore(text, prelimHeadRe)
}

// IsFinalCandidate reports whether a piece looks like a final trip block.
func IsFinalCandidate(block string) bool {
	if !strings.Contains(block, "TRIP") {
		return false
	}
	return strings.Contains(block, "TAFB") ||
		strings.Contains(block, "Credit Time") ||
		strings.Contains(block, "PERDIEM")
}

// IsPrelimCandidate reports whether a fragment looks like a prelim block.
func IsPrelimCandidate(block string) bool {
	if !strings.Contains(strings.ToLower(block), "effective") {
		return false
	}
	return strings.Contains(block, "TAFB") ||
		strings.Contains(block, "Credit Time") ||
		legLineRe.MatchString(block)
}
