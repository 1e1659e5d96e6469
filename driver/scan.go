package driver

import (
	"regexp"
)

// promptScanner finds the earliest point in a growing buffer at which any
// of an ordered list of patterns matches, as if every pattern were tested
// (in order) after each byte was appended.
//
// The buffer passed to scan must only ever grow between calls, and the
// patterns must be prefix-monotonic.
type promptScanner struct {
	patterns []*regexp.Regexp
	// clean is the length of the longest prefix known to match no pattern,
	// or -1 if no scan has completed yet.
	clean int
}

type promptMatch struct {
	// index of the pattern in promptScanner.patterns
	index int
	start int
	end   int
}

func newPromptScanner(patterns []*regexp.Regexp) *promptScanner {
	return &promptScanner{patterns: patterns, clean: -1}
}

func (s *promptScanner) scan(buf []byte) (promptMatch, bool) {
	best := -1
	bestEnd := 0

	for i, re := range s.patterns {
		hi := len(buf)
		if best >= 0 {
			// must be strictly earlier to win against an earlier pattern
			hi = bestEnd - 1
		}
		if hi <= s.clean || !re.Match(buf[:hi]) {
			continue
		}
		if end := s.earliest(re, buf, hi); best < 0 || end < bestEnd {
			best, bestEnd = i, end
		}
	}

	if best < 0 {
		s.clean = len(buf)
		return promptMatch{}, false
	}

	loc := s.patterns[best].FindIndex(buf[:bestEnd])
	return promptMatch{index: best, start: loc[0], end: loc[1]}, true
}

// earliest returns the shortest prefix length n, where clean < n <= hi,
// such that re matches buf[:n]. It must match buf[:hi].
func (s *promptScanner) earliest(re *regexp.Regexp, buf []byte, hi int) int {
	lo := s.clean
	if lo < 0 {
		if re.Match(buf[:0]) {
			return 0
		}
		lo = 0
	}
	// invariant: buf[:lo] does not match, buf[:hi] does
	for lo+1 < hi {
		mid := int(uint(lo+hi) >> 1)
		if re.Match(buf[:mid]) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}
