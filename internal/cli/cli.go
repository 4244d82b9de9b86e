// Package cli defines the command line surface. Option parsing is
// go-flags; everything that can be rejected before a single line is
// read is rejected here or during spec resolution in app.
package cli

import (
	"fmt"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDelimiter       = `\s+`
	defaultOutputDelimiter = "\t"
)

// Options is the parsed command line.
type Options struct {
	Fields        string   `short:"f" long:"fields" description:"Fields to keep, ex: 1,3-5,7-. Fields are 1-based and inclusive"`
	Exclude       string   `short:"e" long:"exclude" description:"Fields to exclude, ex: 2,9-. Takes precedence over --fields"`
	HeaderFields  []string `short:"F" long:"header-field" description:"Select a column by header name (repeatable)"`
	ExcludeHeader []string `short:"E" long:"exclude-header" description:"Exclude a column by header name (repeatable)"`
	HeaderRegex   bool     `short:"r" long:"regex-headers" description:"Treat header selectors as regexes instead of string literals"`

	Delimiter  string `short:"d" long:"delimiter" description:"Input delimiter, a regex by default (default: \\s+)"`
	Literal    bool   `short:"L" long:"literal-delimiter" description:"Treat the input delimiter as a string literal"`
	Greedy     bool   `short:"g" long:"greedy-delimiter" description:"Drop empty fields produced by adjacent delimiter matches"`
	OutDelim   string `short:"D" long:"output-delimiter" description:"Output delimiter (default: tab)"`
	MirrorOut  bool   `short:"m" long:"mirror-delimiter" description:"Use the input delimiter on output (literal delimiters only)"`
	Decompress bool   `short:"z" long:"decompress" description:"Decompress .gz input files on the fly"`

	Output  string `short:"o" long:"output" description:"Output file, defaults to stdout"`
	Verbose bool   `short:"v" long:"verbose" description:"Enable debug logging"`

	Inputs []string // positional; empty or "-" means stdin
}

// Parse parses argv into Options and applies defaults. A --help request
// is reported as a *flags.Error with type flags.ErrHelp; IsHelp
// recognizes it.
func Parse(argv []string) (*Options, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [FILE...]"

	rest, err := parser.ParseArgs(argv)
	if err != nil {
		return nil, err
	}
	opts.Inputs = rest

	if opts.Delimiter == "" {
		opts.Delimiter = defaultDelimiter
	}
	if opts.OutDelim == "" {
		opts.OutDelim = defaultOutputDelimiter
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// IsHelp reports whether err is the user asking for --help.
func IsHelp(err error) bool {
	fe, ok := err.(*flags.Error)
	return ok && fe.Type == flags.ErrHelp
}

// Reported reports whether go-flags already printed err to stderr
// (flags.Default includes PrintErrors), so callers don't log it twice.
func Reported(err error) bool {
	_, ok := err.(*flags.Error)
	return ok
}

func (o *Options) validate() error {
	if o.MirrorOut && !o.Literal {
		return fmt.Errorf("--mirror-delimiter requires a literal input delimiter: a regex has no single rendering")
	}
	if o.Greedy && o.Literal {
		return fmt.Errorf("--greedy-delimiter only applies to regex delimiters")
	}
	if o.HeaderRegex && len(o.HeaderFields) == 0 && len(o.ExcludeHeader) == 0 {
		return fmt.Errorf("--regex-headers given without any header selectors")
	}
	return nil
}

// HeaderMode reports whether any selection depends on header names, in
// which case the field spec must be re-resolved per input file.
func (o *Options) HeaderMode() bool {
	return len(o.HeaderFields) > 0 || len(o.ExcludeHeader) > 0
}
