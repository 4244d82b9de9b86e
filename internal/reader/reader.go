// Package reader supplies newline-stripped lines from files or stdin,
// transparently decompressing *.gz inputs. Lines are byte views into
// the read buffer, valid until the next call; the core never copies
// them.
package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// Read buffer sized for wide lines; knife-style single big buffer.
const bufferSize = 1 << 20

var (
	termLF   = []byte("\n")
	termCRLF = []byte("\r\n")
)

// Input is one line-oriented input stream.
type Input struct {
	name string
	file *os.File
	gz   *pgzip.Reader
	br   *bufio.Reader

	spill []byte // overflow for lines longer than the buffer
	eof   bool
}

// Open opens path for line reading. "-" or "" mean stdin. With
// decompress set, files ending in .gz are gunzipped on the fly; stdin
// is never decompressed.
func Open(path string, decompress bool) (*Input, error) {
	if path == "" || path == "-" {
		return &Input{name: "stdin", br: bufio.NewReaderSize(os.Stdin, bufferSize)}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	in := &Input{name: path, file: f}
	if decompress && strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		in.gz = gz
		in.br = bufio.NewReaderSize(gz, bufferSize)
	} else {
		in.br = bufio.NewReaderSize(f, bufferSize)
	}
	return in, nil
}

// Name returns a printable name for the input.
func (in *Input) Name() string { return in.name }

// Close releases the underlying file, if any.
func (in *Input) Close() error {
	if in.gz != nil {
		in.gz.Close()
	}
	if in.file != nil {
		return in.file.Close()
	}
	return nil
}

// Next returns the next line with its terminator stripped, plus the
// terminator itself ("\n", "\r\n", or empty for a final unterminated
// line). The line aliases the read buffer and is valid until the next
// call. io.EOF signals a clean end of input.
func (in *Input) Next() (line, term []byte, err error) {
	if in.eof {
		return nil, nil, io.EOF
	}

	line, err = in.br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		// Long line: spill into an owned buffer until the newline.
		in.spill = append(in.spill[:0], line...)
		for err == bufio.ErrBufferFull {
			line, err = in.br.ReadSlice('\n')
			in.spill = append(in.spill, line...)
		}
		line = in.spill
	}
	switch err {
	case nil:
	case io.EOF:
		in.eof = true
		if len(line) == 0 {
			return nil, nil, io.EOF
		}
		return line, nil, nil
	default:
		return nil, nil, err
	}

	if n := len(line); n >= 2 && line[n-2] == '\r' {
		return line[:n-2], termCRLF, nil
	}
	return line[:len(line)-1], termLF, nil
}
