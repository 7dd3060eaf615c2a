// Package prelim adapts draft pairing blocks, which lack a canonical TRIP #
// header, so they can run through the regular block extractor.
package prelim

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"pairing_parser/internal/extract"
	"pairing_parser/internal/pairing"
)

const (
	unknownBase = "XX"
	blankMask   = "_______"
)

var (
	// A real header may still be buried inside a prelim fragment.
	realHeadRe = regexp.MustCompile(`(?i)TRIP\s*#\s*(\S+)\s+(\S+)`)

	// YEG: 111____
	baseMaskRe = regexp.MustCompile(`\b([A-Z]{3}):\s*([0-9_]{1,7})`)

	// Fallback: a bare station code starting the header line.
	leadStationRe = regexp.MustCompile(`^\s*([A-Z]{3})`)

	// effective SEP 01-SEP 30 except SEP 15
	effectiveRe = regexp.MustCompile(`(?i)(effective.*)$`)
)

// IDFunc generates a synthetic pairing identifier for a headerless block.
// Injecting it keeps output reproducible in tests.
type IDFunc func(block string) string

// FingerprintID is the default IDFunc: an FNV-1a content fingerprint, so the
// same block always receives the same identifier.
func FingerprintID(block string) string {
	h := fnv.New32a()
	h.Write([]byte(block))
	return fmt.Sprintf("P%06d", h.Sum32()%1000000)
}

// Adapt rewrites a prelim block into a synthetic final-style block and
// delegates to the block extractor. The result is tagged preliminary unless
// the block already carried a real TRIP # header, whose identifiers are then
// reused as-is.
func Adapt(block string, opts extract.Options, genID IDFunc) *pairing.Trip {
	lines := nonBlankLines(block)
	if len(lines) == 0 {
		return nil
	}
	head := lines[0]

	if genID == nil {
		genID = FingerprintID
	}

	base := unknownBase
	mask := blankMask
	if m := baseMaskRe.FindStringSubmatch(head); m != nil {
		base = strings.ToUpper(m[1])
		mask = m[2]
	} else if m := leadStationRe.FindStringSubmatch(head); m != nil {
		base = strings.ToUpper(m[1])
	}

	effectiveClause := "effective AUTO"
	if m := effectiveRe.FindStringSubmatch(head); m != nil {
		effectiveClause = m[1]
	}

	var tripID, pairingID string
	realHead := realHeadRe.FindStringSubmatch(block)
	isPrelim := realHead == nil
	if realHead != nil {
		tripID = realHead[1]
		pairingID = realHead[2]
	} else {
		tripID = base
		pairingID = genID(block)
	}

	header := fmt.Sprintf("TRIP #%s  %s  (%s) %s: %s %s",
		tripID, pairingID, base, base, mask, effectiveClause)

	trip := extract.Block(header+"\n"+block, opts)
	if trip != nil && isPrelim {
		trip.IsPrelim = true
	}
	return trip
}

func nonBlankLines(block string) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(block), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
