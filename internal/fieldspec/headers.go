package fieldspec

import (
	"fmt"
	"regexp"

	"cleaver/internal/splitter"
)

// Selector matches one header name, either byte-exact or by pattern.
type Selector struct {
	raw string
	re  *regexp.Regexp // nil when literal
}

// CompileSelectors turns raw header selectors into Selectors, compiling
// each as a regex when isRegex is set. Compilation failures are
// configuration-time errors.
func CompileSelectors(raw []string, isRegex bool) ([]Selector, error) {
	sels := make([]Selector, 0, len(raw))
	for _, r := range raw {
		s := Selector{raw: r}
		if isRegex {
			re, err := regexp.Compile(r)
			if err != nil {
				return nil, fmt.Errorf("header selector %q: %w", r, err)
			}
			s.re = re
		}
		sels = append(sels, s)
	}
	return sels, nil
}

func (s Selector) match(header []byte) bool {
	if s.re != nil {
		return s.re.Match(header)
	}
	return string(header) == s.raw
}

// SplitHeader splits the first line of a file into its header texts
// with the same delimiter used for data lines. The views alias line and
// are only read during resolution.
func SplitHeader(delim *splitter.Delimiter, line []byte) [][]byte {
	var headers [][]byte
	it := delim.Split(line)
	for {
		h, ok := it.Next()
		if !ok {
			return headers
		}
		headers = append(headers, h)
	}
}

// matchSelectors resolves selectors against header texts. Each selector
// contributes one single-index interval per matching header, in header
// order, grouped at the selector's position. With require set, a
// selector that matches nothing is an ErrHeaderNotFound; without it the
// selector is dropped silently (excluding something absent is a no-op).
func matchSelectors(sels []Selector, headers [][]byte, require bool) ([]Interval, error) {
	var ivs []Interval
	for _, sel := range sels {
		found := false
		for i, h := range headers {
			if sel.match(h) {
				found = true
				ivs = append(ivs, Interval{Low: i + 1, High: i + 1})
			}
		}
		if require && !found {
			return nil, fmt.Errorf("%w: %q", ErrHeaderNotFound, sel.raw)
		}
	}
	return ivs, nil
}

// ResolveWithHeaders builds a Spec when header selectors participate.
// Index-based include picks come first, then header picks in selector
// order; the combined exclusion set is applied to both. Runs once per
// file, since each file may carry different headers.
func ResolveWithHeaders(include, exclude string, selInclude, selExclude []Selector, headers [][]byte) (*Spec, error) {
	var picks []Interval
	if include != "" {
		var err error
		picks, err = parseList(include)
		if err != nil {
			return nil, err
		}
	}
	headerPicks, err := matchSelectors(selInclude, headers, true)
	if err != nil {
		return nil, err
	}
	picks = append(picks, headerPicks...)

	var excluded []Interval
	if exclude != "" {
		excluded, err = parseList(exclude)
		if err != nil {
			return nil, err
		}
	}
	headerDrops, _ := matchSelectors(selExclude, headers, false)
	excluded = append(excluded, headerDrops...)

	return build(picks, excluded), nil
}
