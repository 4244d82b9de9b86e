// Package app wires configuration into the per-file pipeline: open,
// resolve the field spec (per file when headers are involved), then
// split and reshuffle every line in input order.
package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"go.uber.org/zap"

	"cleaver/internal/cli"
	"cleaver/internal/fieldspec"
	"cleaver/internal/reader"
	"cleaver/internal/shuffle"
	"cleaver/internal/splitter"
)

const writeBufferSize = 1 << 16

// Run executes one invocation. All configuration errors surface before
// the first line is processed; per-line anomalies (short lines, empty
// lines, lines without a delimiter) are absorbed by the core.
func Run(opts *cli.Options, logger *zap.Logger) error {
	delim, err := splitter.New(opts.Delimiter, opts.Literal, opts.Greedy)
	if err != nil {
		return err
	}
	outDelim := []byte(opts.OutDelim)
	if opts.MirrorOut {
		outDelim = delim.Bytes()
	}

	selInc, err := fieldspec.CompileSelectors(opts.HeaderFields, opts.HeaderRegex)
	if err != nil {
		return err
	}
	selExc, err := fieldspec.CompileSelectors(opts.ExcludeHeader, opts.HeaderRegex)
	if err != nil {
		return err
	}

	// Index-only specs resolve once for the whole run; header-based
	// specs wait for each file's header line.
	var spec *fieldspec.Spec
	if !opts.HeaderMode() {
		spec, err = fieldspec.Resolve(opts.Fields, opts.Exclude)
		if err != nil {
			return err
		}
	}

	out, closeOut, err := openOutput(opts.Output)
	if err != nil {
		return err
	}
	defer closeOut()
	w := bufio.NewWriterSize(out, writeBufferSize)
	// Flush whatever was produced even when a later file fails;
	// partial output is never rolled back.
	defer w.Flush()

	inputs := opts.Inputs
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	for _, path := range inputs {
		if err := processFile(path, opts, delim, outDelim, spec, selInc, selExc, w, logger); err != nil {
			return err
		}
	}
	return w.Flush()
}

func processFile(path string, opts *cli.Options, delim *splitter.Delimiter, outDelim []byte,
	spec *fieldspec.Spec, selInc, selExc []fieldspec.Selector, w io.Writer, logger *zap.Logger) error {

	in, err := reader.Open(path, opts.Decompress)
	if err != nil {
		return err
	}
	defer in.Close()
	logger.Debug("processing input", zap.String("input", in.Name()))

	var sh *shuffle.Shuffler
	if opts.HeaderMode() {
		line, term, err := in.Next()
		if err == io.EOF {
			logger.Debug("empty input", zap.String("input", in.Name()))
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", in.Name(), err)
		}
		headers := fieldspec.SplitHeader(delim, line)
		fileSpec, err := fieldspec.ResolveWithHeaders(opts.Fields, opts.Exclude, selInc, selExc, headers)
		if err != nil {
			return fmt.Errorf("%s: %w", in.Name(), err)
		}
		logger.Debug("resolved headers",
			zap.String("input", in.Name()),
			zap.Int("columns", len(headers)),
			zap.Int("picks", len(fileSpec.Picks)))
		// The header line itself goes through the same pipeline, so
		// selected columns keep their headers.
		sh = shuffle.New(fileSpec, delim, outDelim, w)
		if err := sh.WriteLine(line, term); err != nil {
			return err
		}
	} else {
		sh = shuffle.New(spec, delim, outDelim, w)
	}

	for {
		line, term, err := in.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", in.Name(), err)
		}
		if err := sh.WriteLine(line, term); err != nil {
			return err
		}
	}
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// IsBrokenPipe reports whether err is the downstream consumer going
// away (cleaver | head); the run then ends quietly with success.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}
