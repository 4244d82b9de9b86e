// Package splitter turns a line of bytes into fields. The delimiter is
// chosen once per run; every line is then consumed through a single
// forward pass that yields zero-copy views into the line.
package splitter

import (
	"bytes"
	"fmt"
	"regexp"
)

type kind uint8

const (
	kindByte  kind = iota // single literal byte, the fast path
	kindBytes             // literal byte sequence
	kindRegex             // compiled pattern, e.g. runs of whitespace
)

// Delimiter is a line splitting strategy. The zero value is not usable;
// build one with New.
type Delimiter struct {
	kind   kind
	b      byte
	seq    []byte
	re     *regexp.Regexp
	greedy bool
}

// New builds a Delimiter. A literal pattern is matched byte-exact; a
// non-literal pattern is compiled as a regular expression. greedy drops
// the empty fields produced by adjacent matches and only applies to
// regex delimiters.
func New(pattern string, literal, greedy bool) (*Delimiter, error) {
	if literal {
		if pattern == "" {
			return nil, fmt.Errorf("empty literal delimiter")
		}
		if greedy {
			return nil, fmt.Errorf("greedy splitting requires a regex delimiter")
		}
		if len(pattern) == 1 {
			return &Delimiter{kind: kindByte, b: pattern[0]}, nil
		}
		return &Delimiter{kind: kindBytes, seq: []byte(pattern)}, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("delimiter pattern: %w", err)
	}
	return &Delimiter{kind: kindRegex, re: re, greedy: greedy}, nil
}

// Literal reports whether the delimiter has an exact byte rendering.
func (d *Delimiter) Literal() bool { return d.kind != kindRegex }

// Bytes returns the literal rendering, or nil for a regex delimiter.
func (d *Delimiter) Bytes() []byte {
	switch d.kind {
	case kindByte:
		return []byte{d.b}
	case kindBytes:
		return d.seq
	}
	return nil
}

// Iter is a single-pass field iterator over one line. It is a value
// type so that Split allocates nothing per line.
type Iter struct {
	d      *Delimiter
	line   []byte
	pos    int // start of the next field
	search int // where the next delimiter scan begins (regex only)
	done   bool
}

// Split starts a pass over line. The line must already be stripped of
// its terminator. An empty line yields no fields.
func (d *Delimiter) Split(line []byte) Iter {
	return Iter{d: d, line: line, done: len(line) == 0}
}

// Next yields the next field, or ok == false once the line is consumed.
// The returned slice aliases the line.
func (it *Iter) Next() ([]byte, bool) {
	for {
		f, ok := it.next()
		if !ok {
			return nil, false
		}
		if it.d.greedy && len(f) == 0 {
			continue
		}
		return f, true
	}
}

func (it *Iter) next() ([]byte, bool) {
	if it.done {
		return nil, false
	}
	switch it.d.kind {
	case kindByte:
		rest := it.line[it.pos:]
		i := bytes.IndexByte(rest, it.d.b)
		if i < 0 {
			it.done = true
			return rest, true
		}
		it.pos += i + 1
		return rest[:i], true
	case kindBytes:
		rest := it.line[it.pos:]
		i := bytes.Index(rest, it.d.seq)
		if i < 0 {
			it.done = true
			return rest, true
		}
		it.pos += i + len(it.d.seq)
		return rest[:i], true
	default:
		return it.nextRegex()
	}
}

func (it *Iter) nextRegex() ([]byte, bool) {
	for {
		if it.search > len(it.line) {
			it.done = true
			return it.line[it.pos:], true
		}
		loc := it.d.re.FindIndex(it.line[it.search:])
		if loc == nil {
			it.done = true
			return it.line[it.pos:], true
		}
		a, b := it.search+loc[0], it.search+loc[1]
		if a == b {
			// Zero-width match: never emit a zero-width field and
			// always advance, so pathological patterns terminate.
			it.search = a + 1
			continue
		}
		f := it.line[it.pos:a]
		it.pos, it.search = b, b
		return f, true
	}
}
