// Package predictor implements CodepointPredictor (spec §4.6): given
// the font's full codepoint set, what the client already has, and what
// it just asked for, propose a bounded number of extra codepoints
// likely to be wanted next.
//
// The reference frequency_codepoint_predictor.cc leaves Predict
// unimplemented; Frequency.Predict below follows the §4.6 selection
// algorithm directly.
package predictor

import (
	"sort"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Predictor proposes additional codepoints to bundle with a response.
type Predictor interface {
	// Predict returns up to max codepoints drawn from
	// font \ (have ∪ requested).
	Predict(font, have, requested []rune, max int) []rune
}

// Noop never proposes anything.
type Noop struct{}

// Predict implements Predictor.
func (Noop) Predict([]rune, []rune, []rune, int) []rune { return nil }

// Subset is one partition of a Strategy: a set of codepoints and their
// observed frequency counts within the corpus this strategy was built
// from.
type Subset struct {
	Name   string
	Counts map[rune]uint64
	table  *unicode.RangeTable
}

func (s *Subset) rangeTable() *unicode.RangeTable {
	if s.table != nil {
		return s.table
	}
	runes := make([]rune, 0, len(s.Counts))
	for r := range s.Counts {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	s.table = rangetable.New(runes...)
	return s.table
}

// Strategy is a named partition of Unicode into Subsets, each with
// per-codepoint frequency counts (spec §4.6: "a precomputed corpus of
// slicing strategies").
type Strategy struct {
	Name    string
	Subsets []*Subset
}

func (s *Strategy) rangeTable() *unicode.RangeTable {
	tables := make([]*unicode.RangeTable, len(s.Subsets))
	for i, sub := range s.Subsets {
		tables[i] = sub.rangeTable()
	}
	return rangetable.Merge(tables...)
}

func intersectionSize(table *unicode.RangeTable, codepoints []rune) int {
	n := 0
	for _, r := range codepoints {
		if unicode.Is(table, r) {
			n++
		}
	}
	return n
}

// Frequency is the frequency-based CodepointPredictor: it picks the
// strategy with the largest distinct-codepoint overlap with the font,
// then ranks unrequested candidates within subsets that intersect the
// newly requested codepoints.
type Frequency struct {
	Strategies []*Strategy
	// MinFreq is the minimum count/M ratio (§4.6 step 3) a candidate
	// must meet to be proposed.
	MinFreq float64
}

// Predict implements Predictor.
func (f *Frequency) Predict(font, have, requested []rune, max int) []rune {
	if len(f.Strategies) == 0 || max <= 0 {
		return nil
	}

	strategy := f.pickStrategy(font)
	if strategy == nil {
		return nil
	}

	haveSet := toSet(have)
	requestedSet := toSet(requested)
	fontSet := toSet(font)

	m := maxCountOverIntersecting(strategy, requestedSet, fontSet)
	if m == 0 {
		return nil
	}

	type candidate struct {
		cp    rune
		count uint64
	}
	var candidates []candidate

	for _, sub := range strategy.Subsets {
		if !intersectsAny(sub, requestedSet) {
			continue
		}
		for cp, count := range sub.Counts {
			if requestedSet[cp] || haveSet[cp] || !fontSet[cp] {
				continue
			}
			if float64(count)/float64(m) < f.MinFreq {
				continue
			}
			candidates = append(candidates, candidate{cp, count})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].cp < candidates[j].cp
	})

	if len(candidates) > max {
		candidates = candidates[:max]
	}
	out := make([]rune, len(candidates))
	for i, c := range candidates {
		out[i] = c.cp
	}
	return out
}

// pickStrategy selects the strategy whose distinct-codepoint
// intersection with font is largest, breaking ties by declaration
// order (deterministic given a fixed corpus).
func (f *Frequency) pickStrategy(font []rune) *Strategy {
	var best *Strategy
	bestN := -1
	for _, s := range f.Strategies {
		n := intersectionSize(s.rangeTable(), font)
		if n > bestN {
			best, bestN = s, n
		}
	}
	return best
}

func maxCountOverIntersecting(strategy *Strategy, requested, font map[rune]bool) uint64 {
	var m uint64
	for _, sub := range strategy.Subsets {
		if !intersectsAny(sub, requested) && !intersectsAny(sub, font) {
			continue
		}
		for _, count := range sub.Counts {
			if count > m {
				m = count
			}
		}
	}
	return m
}

func intersectsAny(sub *Subset, set map[rune]bool) bool {
	for cp := range set {
		if _, ok := sub.Counts[cp]; ok {
			return true
		}
	}
	return false
}

func toSet(runes []rune) map[rune]bool {
	set := make(map[rune]bool, len(runes))
	for _, r := range runes {
		set[r] = true
	}
	return set
}
