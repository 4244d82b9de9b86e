// Package shuffle reassembles selected fields into output records. A
// Shuffler owns a single reusable buffer; per-line work appends into it
// and flushes once, so steady-state processing allocates nothing.
package shuffle

import (
	"io"

	"cleaver/internal/fieldspec"
	"cleaver/internal/splitter"
)

// Shuffler writes, for every input line, the fields named by the spec
// in the spec's order, joined by the output delimiter.
type Shuffler struct {
	spec  *fieldspec.Spec
	delim *splitter.Delimiter
	out   io.Writer

	outDelim []byte
	buf      []byte   // reassembly buffer, capacity only grows
	fields   [][]byte // per-line staging of field views
}

func New(spec *fieldspec.Spec, delim *splitter.Delimiter, outDelim []byte, out io.Writer) *Shuffler {
	return &Shuffler{
		spec:     spec,
		delim:    delim,
		out:      out,
		outDelim: outDelim,
	}
}

// WriteLine splits line, picks fields per the spec and writes one
// record terminated by term. term mirrors the input line's own
// terminator and may be empty for a final unterminated line.
//
// Short lines are not errors: a bounded pick past the last field
// contributes an empty field, an open-ended pick just ends early.
func (s *Shuffler) WriteLine(line, term []byte) error {
	it := s.delim.Split(line)
	s.buf = s.buf[:0]
	if s.spec.Streamable {
		s.stream(&it)
	} else {
		s.stage(&it)
	}
	s.buf = append(s.buf, term...)
	_, err := s.out.Write(s.buf)
	return err
}

// stage collects field views up to the highest index the spec can
// reference, then replays them in pick order. This is the general path:
// it supports reordering and repeated picks.
func (s *Shuffler) stage(it *splitter.Iter) {
	s.fields = s.fields[:0]
	max := s.spec.MaxIndex
	for max < 0 || len(s.fields) < max {
		f, ok := it.Next()
		if !ok {
			break
		}
		s.fields = append(s.fields, f)
	}

	first := true
	for _, iv := range s.spec.Picks {
		high := iv.High
		if high == fieldspec.OpenEnd {
			// Open tail: only the fields that exist.
			high = len(s.fields)
		}
		for i := iv.Low; i <= high; i++ {
			if !first {
				s.buf = append(s.buf, s.outDelim...)
			}
			first = false
			if i <= len(s.fields) {
				s.buf = append(s.buf, s.fields[i-1]...)
			}
		}
	}
}

// stream is the fast path for strictly ascending, non-repeating specs:
// fields go straight from the splitter into the buffer, nothing is
// staged, and scanning stops as soon as the last pick is satisfied.
func (s *Shuffler) stream(it *splitter.Iter) {
	first := true
	next := 1 // index the splitter will yield next
	exhausted := false
	for _, iv := range s.spec.Picks {
		for !exhausted && next < iv.Low {
			if _, ok := it.Next(); !ok {
				exhausted = true
				break
			}
			next++
		}
		if iv.High == fieldspec.OpenEnd {
			for !exhausted {
				f, ok := it.Next()
				if !ok {
					exhausted = true
					break
				}
				next++
				if !first {
					s.buf = append(s.buf, s.outDelim...)
				}
				first = false
				s.buf = append(s.buf, f...)
			}
			continue
		}
		for i := iv.Low; i <= iv.High; i++ {
			var f []byte
			if !exhausted {
				var ok bool
				f, ok = it.Next()
				if !ok {
					exhausted = true
				} else {
					next++
				}
			}
			if !first {
				s.buf = append(s.buf, s.outDelim...)
			}
			first = false
			s.buf = append(s.buf, f...)
		}
	}
}
