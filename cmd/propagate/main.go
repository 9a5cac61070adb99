package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	propagate "github.com/fredc1/propagate-uncertainty-project"
	"github.com/fredc1/propagate-uncertainty-project/table"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var (
		text, inname, outname string
		given                 []propagate.Measurement
		prec, depth           int
		funcs, verbose        bool
	)
	addgiven := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`measurements must be "name=value+/-uncertainty", not %q`, s)
		}
		p, ok := propagate.ParsePair(d[1])
		if !ok {
			return fmt.Errorf(`measurement of %s must be "value+/-uncertainty", not %q`, d[0], d[1])
		}
		given = append(given, propagate.Measurement{Name: strings.TrimSpace(d[0]), Value: p.Value, Uncertainty: p.Uncertainty})
		return nil
	}
	flag.StringVar(&text, "expr", "", "expression to evaluate (default the remaining arguments)")
	flag.Func("given", "name=value+/-uncertainty measurement (any number of times)", addgiven)
	flag.StringVar(&inname, "in", "", "CSV table of measurements (- for stdin)")
	flag.StringVar(&outname, "out", "", "CSV file for results of -in (default stdout)")
	flag.IntVar(&prec, "p", propagate.DefaultPrec, "precision of calculations in bits")
	flag.IntVar(&depth, "depth", propagate.DefaultMaxDepth, "maximum nesting of the expression (negative for no limit)")
	flag.BoolVar(&funcs, "funcs", false, "list the available functions and exit")
	flag.BoolVar(&verbose, "v", false, "log debug messages")
	flag.Parse()
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if funcs {
		listFuncs(os.Stdout)
		return
	}
	if prec < 0 {
		log.Fatal().Msgf("precision (%d) must not be negative", prec)
	}
	if text == "" {
		text = strings.Join(flag.Args(), " ")
	}

	e, err := propagate.New(text,
		propagate.Prec(uint(prec)),
		propagate.MaxDepth(depth),
		propagate.WithLogger(log.Logger),
	)
	if err != nil {
		// Positions in parse errors refer to the normalized text, so only
		// validator errors get a caret.
		var ie propagate.InputError
		var inv *propagate.InvalidExpressionError
		if errors.As(err, &ie) && !errors.As(err, &inv) {
			fmt.Fprintln(os.Stderr, caret(text, ie.Pos()))
		}
		log.Fatal().Err(err).Msg("invalid expression")
	}
	log.Debug().Str("tree", e.Tree()).Strs("variables", e.Variables()).Msg("parsed")
	if err := run(e, given, inname, outname); err != nil {
		log.Fatal().Err(err).Send()
	}
}

// run evaluates e for the given measurements, or for each row of the table
// in inname when that is set.
func run(e *propagate.Expression, given []propagate.Measurement, inname, outname string) error {
	if inname == "" {
		r, err := e.Propagate(given)
		if err != nil {
			return fmt.Errorf("evaluating: %w", err)
		}
		fmt.Println(r)
		return nil
	}
	in, err := infile(inname)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()
	t, err := table.Read(in, e.Variables())
	if err != nil {
		return fmt.Errorf("reading table: %w", err)
	}
	rs, err := table.Evaluate(e, t)
	if err != nil {
		return fmt.Errorf("evaluating: %w", err)
	}
	out, err := outfile(outname)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	if err := table.Write(out, e, t, rs); err != nil {
		out.Close()
		return fmt.Errorf("writing results: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	log.Debug().Int("rows", len(rs)).Msg("done")
	return nil
}

// caret marks the 1-based position pos in the expression text with a caret
// under it. Positions count runes of the text with whitespace removed.
func caret(text string, pos int) string {
	s := strings.Join(strings.Fields(text), "")
	if pos < 1 {
		pos = 1
	}
	return s + "\n" + strings.Repeat(" ", pos-1) + "^"
}

func listFuncs(w io.Writer) {
	v := propagate.DefaultVocabulary()
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "operators\t%s\n", v.Operators())
	for _, f := range v.Funcs() {
		fmt.Fprintf(tw, "%s\t%s\n", f.Signature, f.Description)
	}
	tw.Flush()
}

func infile(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func outfile(name string) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(name)
}
