// Package fieldspec resolves field selection expressions such as
// "1,3-5,8-" into the concrete, ordered list of output positions the
// per-line hot loop works from. Selections can be made by index range,
// by exclusion, or by matching header names; everything is reduced to
// plain intervals before the first data line is processed.
package fieldspec

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// OpenEnd marks an interval that runs through the last field of a line.
const OpenEnd = math.MaxInt

var (
	ErrInvalidField   = errors.New("fields are numbered from 1")
	ErrInvalidRange   = errors.New("high end of range less than low end")
	ErrHeaderNotFound = errors.New("header not found")
)

// Interval is an inclusive, 1-based range of field indices.
// High == OpenEnd means "through the end of the line".
type Interval struct {
	Low  int
	High int
}

func (iv Interval) open() bool { return iv.High == OpenEnd }

// Spec is a fully resolved selection: picks in output order, with
// duplicates preserved, plus the two facts the hot loop cares about.
type Spec struct {
	// Picks are emitted left to right; a pick may repeat an index
	// already covered by an earlier pick.
	Picks []Interval

	// MaxIndex is the highest field index any pick can reference,
	// or -1 when an open-ended pick makes it unbounded. The splitter
	// stops scanning a line once this many fields have been produced.
	MaxIndex int

	// Streamable is true when picks are strictly ascending and
	// non-overlapping, so fields can be written straight to the
	// output buffer in the order the splitter yields them.
	Streamable bool
}

// Resolve builds a Spec from index-based include and exclude lists.
// Empty include and exclude select every field in order, same as "1-".
func Resolve(include, exclude string) (*Spec, error) {
	var picks []Interval
	if include != "" {
		var err error
		picks, err = parseList(include)
		if err != nil {
			return nil, err
		}
	}

	var excluded []Interval
	if exclude != "" {
		var err error
		excluded, err = parseList(exclude)
		if err != nil {
			return nil, err
		}
	}

	return build(picks, excluded), nil
}

// build applies defaulting and exclusion and computes the hot loop
// metadata. picks may be nil (select all); excluded may be unsorted.
func build(picks, excluded []Interval) *Spec {
	if len(picks) == 0 {
		picks = []Interval{{Low: 1, High: OpenEnd}}
	}
	if len(excluded) > 0 {
		drop := normalize(excluded)
		kept := make([]Interval, 0, len(picks))
		for _, iv := range picks {
			kept = append(kept, subtract(iv, drop)...)
		}
		picks = kept
	}

	s := &Spec{Picks: picks, MaxIndex: 0, Streamable: true}
	prevHigh := 0
	for _, iv := range s.Picks {
		if iv.open() {
			s.MaxIndex = -1
		} else if s.MaxIndex >= 0 && iv.High > s.MaxIndex {
			s.MaxIndex = iv.High
		}
		if prevHigh == OpenEnd || iv.Low <= prevHigh {
			s.Streamable = false
		}
		prevHigh = iv.High
	}
	return s
}

// parseList parses a comma separated list of range tokens, keeping the
// caller's token order.
func parseList(list string) ([]Interval, error) {
	parts := strings.Split(list, ",")
	ivs := make([]Interval, 0, len(parts))
	for _, tok := range parts {
		iv, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		ivs = append(ivs, iv)
	}
	return ivs, nil
}

func parseToken(tok string) (Interval, error) {
	low, high, ok := strings.Cut(tok, "-")
	if !ok {
		n, err := parseIndex(tok)
		if err != nil {
			return Interval{}, err
		}
		return Interval{Low: n, High: n}, nil
	}

	iv := Interval{Low: 1, High: OpenEnd}
	if low == "" && high == "" {
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidField, tok)
	}
	if low != "" {
		n, err := parseIndex(low)
		if err != nil {
			return Interval{}, err
		}
		iv.Low = n
	}
	if high != "" {
		n, err := parseIndex(high)
		if err != nil {
			return Interval{}, err
		}
		iv.High = n
	}
	if iv.High < iv.Low {
		return Interval{}, fmt.Errorf("%w: %d-%d", ErrInvalidRange, iv.Low, iv.High)
	}
	return iv, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidField, s)
	}
	return n, nil
}

// normalize sorts intervals and merges overlaps and adjacency, turning
// an exclusion list into a minimal ascending set.
func normalize(ivs []Interval) []Interval {
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Low != sorted[j].Low {
			return sorted[i].Low < sorted[j].Low
		}
		return sorted[i].High < sorted[j].High
	})

	merged := sorted[:0]
	for _, iv := range sorted {
		if n := len(merged); n > 0 && !merged[n-1].open() && iv.Low <= merged[n-1].High+1 {
			if iv.High > merged[n-1].High {
				merged[n-1].High = iv.High
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// subtract removes every index covered by drop from iv, returning the
// surviving sub-intervals in ascending order. drop must be normalized.
func subtract(iv Interval, drop []Interval) []Interval {
	var out []Interval
	low := iv.Low
	for _, d := range drop {
		if d.High < low {
			continue
		}
		if !iv.open() && d.Low > iv.High {
			break
		}
		if d.Low > low {
			high := d.Low - 1
			if !iv.open() && high > iv.High {
				high = iv.High
			}
			out = append(out, Interval{Low: low, High: high})
		}
		if d.open() {
			return out
		}
		if d.High+1 > low {
			low = d.High + 1
		}
	}
	if iv.open() || low <= iv.High {
		out = append(out, Interval{Low: low, High: iv.High})
	}
	return out
}
