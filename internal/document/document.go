// Package document orchestrates parsing of a whole pairing document:
// segmentation, extraction of final and prelim blocks, and deduplication.
package document

import (
	"pairing_parser/internal/extract"
	"pairing_parser/internal/pairing"
	"pairing_parser/internal/prelim"
	"pairing_parser/internal/segment"
)

// Options configure one document parse.
type Options struct {
	Extract extract.Options

	// GenerateID names headerless prelim blocks. Nil uses the content
	// fingerprint default.
	GenerateID prelim.IDFunc
}

// Parse turns one decoded document into its Trip records: all final trips in
// document order, then every prelim trip whose (trip, pairing) identifier
// pair was not already claimed by a final trip.
func Parse(text string, opts Options) []*pairing.Trip {
	text = segment.StripCoverPages(text)

	var trips []*pairing.Trip
	var leftovers []string

	for _, block := range segment.FinalBlocks(text) {
		if !segment.IsFinalCandidate(block) {
			leftovers = append(leftovers, block)
			continue
		}
		if trip := extract.Block(block, opts.Extract); trip != nil {
			trips = append(trips, trip)
		}
	}

	for _, fragment := range leftovers {
		for _, block := range segment.PrelimBlocks(fragment) {
			if !segment.IsPrelimCandidate(block) {
				continue
			}
			trip := prelim.Adapt(block, opts.Extract, opts.GenerateID)
			if trip == nil || isDuplicate(trips, trip) {
				continue
			}
			trips = append(trips, trip)
		}
	}

	return trips
}

func isDuplicate(trips []*pairing.Trip, candidate *pairing.Trip) bool {
	for _, t := range trips {
		if t.TripNumber == candidate.TripNumber && t.PairingNumber == candidate.PairingNumber {
			return true
		}
	}
	return false
}
