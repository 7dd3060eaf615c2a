// Package weekmask decodes compact weekday-activity masks from pairing documents.
//
// Two encodings appear in the wild: a bracketed binary form like
// "[1,1,1,1,1,0,0]" and a filler form like "111____" where underscore marks
// an inactive day. Position 0 is Monday in both.
package weekmask

import "regexp"

// Mask is the set of active weekday indices, 0=Monday .. 6=Sunday.
type Mask map[int]bool

// filler marks an inactive weekday in the underscore/digit form.
const filler = '_'

var binaryDigitRe = regexp.MustCompile(`[01]`)

// ParseBracket decodes the bracketed binary form ("1,1,1,1,1,0,0" with the
// brackets already removed). It returns ok=false when fewer than 7 binary
// digits are present or when no day is active; an all-inactive mask means
// the data is absent, not that the pairing never operates.
func ParseBracket(s string) (Mask, bool) {
	digits := binaryDigitRe.FindAllString(s, -1)
	if len(digits) < 7 {
		return nil, false
	}
	mask := make(Mask)
	for i, d := range digits[:7] {
		if d == "1" {
			mask[i%7] = true
		}
	}
	if len(mask) == 0 {
		return nil, false
	}
	return mask, true
}

// ParseFiller decodes the underscore/digit form. The input is truncated to 7
// characters; a weekday is active iff its character is not the filler.
// Short or all-filler input yields ok=false, same as ParseBracket.
func ParseFiller(s string) (Mask, bool) {
	runes := []rune(s)
	if len(runes) < 7 {
		return nil, false
	}
	runes = runes[:7]
	mask := make(Mask)
	for i, r := range runes {
		if r != filler {
			mask[i%7] = true
		}
	}
	if len(mask) == 0 {
		return nil, false
	}
	return mask, true
}

// AllDays returns a mask with every weekday active, the fallback when a
// document carries no decodable mask at all.
func AllDays() Mask {
	mask := make(Mask, 7)
	for i := 0; i < 7; i++ {
		mask[i] = true
	}
	return mask
}
