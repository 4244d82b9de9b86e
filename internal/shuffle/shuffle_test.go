package shuffle

import (
	"bytes"
	"strings"
	"testing"

	"cleaver/internal/fieldspec"
	"cleaver/internal/splitter"
)

func mustSpec(t *testing.T, include, exclude string) *fieldspec.Spec {
	t.Helper()
	spec, err := fieldspec.Resolve(include, exclude)
	if err != nil {
		t.Fatalf("Resolve(%q, %q): %v", include, exclude, err)
	}
	return spec
}

func mustDelim(t *testing.T, pattern string, literal bool) *splitter.Delimiter {
	t.Helper()
	d, err := splitter.New(pattern, literal, false)
	if err != nil {
		t.Fatalf("splitter.New(%q): %v", pattern, err)
	}
	return d
}

// shuffleLines runs every input line through one Shuffler, the way app
// does, so buffer reuse across lines is exercised.
func shuffleLines(t *testing.T, spec *fieldspec.Spec, delim *splitter.Delimiter, outDelim string, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	sh := New(spec, delim, []byte(outDelim), &out)
	for _, line := range lines {
		if err := sh.WriteLine([]byte(line), []byte("\n")); err != nil {
			t.Fatalf("WriteLine(%q): %v", line, err)
		}
	}
	return out.String()
}

func TestSelectAndReorder(t *testing.T) {
	tests := []struct {
		name             string
		include, exclude string
		delim            string
		literal          bool
		line             string
		want             string
	}{
		{"single field", "1", "", ",", true, "a,b,c", "a\n"},
		{"pair", "1,3", "", ",", true, "a,b,c", "a\tc\n"},
		{"bounded range", "2-3", "", ",", true, "a,b,c,d", "b\tc\n"},
		{"open range", "2-", "", ",", true, "a,b,c,d", "b\tc\td\n"},
		{"reorder", "6,-4", "", ",", true, "a,b,c,d,e,f,g", "f\ta\tb\tc\td\n"},
		{"interleaved", "3-,1,4-5", "", ",", true, "a,b,c,d,e,f,g", "c\td\te\tf\tg\ta\td\te\n"},
		{"exclusion precedence", "1-5", "3", ",", true, "a,b,c,d,e", "a\tb\td\te\n"},
		{"no delimiter in line", "1-4", "", ",", true, "a-b-c", "a-b-c\t\t\t\n"},
		{"regex split", "2,1", "", `\s+`, false, "a   b", "b\ta\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := mustSpec(t, tt.include, tt.exclude)
			delim := mustDelim(t, tt.delim, tt.literal)
			if got := shuffleLines(t, spec, delim, "\t", tt.line); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrderPreservation(t *testing.T) {
	fields := make([]string, 25)
	for i := range fields {
		fields[i] = string(rune('a' + i))
	}
	line := strings.Join(fields, " ")

	spec := mustSpec(t, "1,19,8", "")
	for _, delim := range []*splitter.Delimiter{
		mustDelim(t, " ", true),
		mustDelim(t, `\s+`, false),
	} {
		if got, want := shuffleLines(t, spec, delim, "\t", line), "a\ts\th\n"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestDuplicateSelection(t *testing.T) {
	spec := mustSpec(t, "1,1,1", "")
	delim := mustDelim(t, ",", true)
	if got, want := shuffleLines(t, spec, delim, "|", "a,b"), "a|a|a\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDefaultSpecRoundTrips(t *testing.T) {
	spec := mustSpec(t, "", "")
	delim := mustDelim(t, ",", true)
	lines := []string{"a,b,c", "x,,z", "single"}
	want := "a,b,c\nx,,z\nsingle\n"
	if got := shuffleLines(t, spec, delim, ",", lines...); got != want {
		t.Errorf("round trip got %q, want %q", got, want)
	}
}

func TestRaggedLines(t *testing.T) {
	delim := mustDelim(t, ",", true)

	// Bounded picks past the end contribute empty fields.
	spec := mustSpec(t, "1,5", "")
	if got, want := shuffleLines(t, spec, delim, "\t", "a,b"), "a\t\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// Open tails past the end contribute nothing.
	spec = mustSpec(t, "1,5-", "")
	if got, want := shuffleLines(t, spec, delim, "\t", "a,b"), "a\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmptyLine(t *testing.T) {
	delim := mustDelim(t, ",", true)

	// An empty line has no fields; selecting everything emits nothing.
	spec := mustSpec(t, "", "")
	if got, want := shuffleLines(t, spec, delim, "\t", ""), "\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// Selecting concrete fields from an empty line emits empties.
	spec = mustSpec(t, "1,2", "")
	if got, want := shuffleLines(t, spec, delim, "\t", ""), "\t\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOutputDelimiter(t *testing.T) {
	spec := mustSpec(t, "4,1", "")
	delim := mustDelim(t, ",", true)
	if got, want := shuffleLines(t, spec, delim, "|", "a,b,c,d"), "d|a\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTerminatorMirrored(t *testing.T) {
	spec := mustSpec(t, "2", "")
	delim := mustDelim(t, ",", true)
	var out bytes.Buffer
	sh := New(spec, delim, []byte("\t"), &out)

	for _, rec := range []struct{ line, term string }{
		{"a,b", "\r\n"},
		{"c,d", "\n"},
		{"e,f", ""}, // final line without a newline stays bare
	} {
		if err := sh.WriteLine([]byte(rec.line), []byte(rec.term)); err != nil {
			t.Fatalf("WriteLine: %v", err)
		}
	}
	if got, want := out.String(), "b\r\nd\nf"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// A short line after a long one must not leak the previous line's
// bytes out of the reused buffer.
func TestNoCarryBetweenLines(t *testing.T) {
	spec := mustSpec(t, "2", "")
	delim := mustDelim(t, ",", true)
	got := shuffleLines(t, spec, delim, "\t", "aaaa,bbbb,cccc", "x,y")
	if want := "bbbb\ny\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStreamableAndStagedAgree(t *testing.T) {
	delim := mustDelim(t, ",", true)
	lines := []string{"a,b,c,d,e", "1,2", "", "x,,z,"}

	// "1,3,5" is streamable; "1,3,5,5" is not. On the shared prefix of
	// picks both must produce identical output per field.
	streamable := mustSpec(t, "1,3,5", "")
	staged := mustSpec(t, "5,1,3", "")
	if !streamable.Streamable {
		t.Fatal("expected 1,3,5 to be streamable")
	}
	if staged.Streamable {
		t.Fatal("expected 5,1,3 to be staged")
	}

	gotStream := shuffleLines(t, streamable, delim, "\t", lines...)
	gotStaged := shuffleLines(t, staged, delim, "\t", lines...)

	// Reorder staged output back to ascending per line to compare.
	var reordered []string
	for _, line := range strings.Split(strings.TrimSuffix(gotStaged, "\n"), "\n") {
		f := strings.Split(line, "\t")
		if len(f) != 3 {
			t.Fatalf("staged line %q: want 3 fields", line)
		}
		reordered = append(reordered, f[1]+"\t"+f[2]+"\t"+f[0])
	}
	if want := strings.Join(reordered, "\n") + "\n"; gotStream != want {
		t.Errorf("stream path %q, staged path reordered %q", gotStream, want)
	}
}
