package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	ansicolor "github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/oklog/ulid/v2"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

func main() {
	ansicolor.NoColor = noColor(os.Stderr)

	if err := realMain(
		context.Background(),
		os.Stdin,
		os.Stdout,
		os.Stderr,
		os.Args,
	); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}

		fmt.Fprintf(os.Stderr, "%s\n", colorError.Sprintf("%v", err))
		os.Exit(1)
	}
}

func realMain(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	args []string,
) error {
	exec := args[0]
	fs := flag.NewFlagSet(exec, flag.ContinueOnError)
	fs.SetOutput(stderr)
	flagMaxLine := fs.String("max-line", "0", "longest accepted line, e.g. 64KiB; 0 means no limit")
	flagStats := fs.Bool("stats", false, "print relay statistics to stderr when done")
	flagVerbose := fs.Bool("v", false, "log phase transitions to stderr")
	flagForceColor := fs.Bool("fc", false, "force color output")
	_ = fs.String("config", "", "config file (optional)")

	rootCmd := &ffcli.Command{
		Name:       "feeder",
		ShortUsage: fmt.Sprintf("%v [flags] [--] [file]", exec),
		ShortHelp:  "echo a file's lines, then relay stdin until it ends",
		FlagSet:    fs,
		Options: []ff.Option{
			ff.WithEnvVarPrefix("FEEDER"),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.PlainParser),
		},
		Exec: func(_ context.Context, args []string) error {
			if *flagForceColor {
				ansicolor.NoColor = false
			}

			maxLine, err := parseMaxLine(*flagMaxLine)
			if err != nil {
				return err
			}

			logger := log.New(io.Discard, "", 0)
			if *flagVerbose {
				runID, err := ulid.New(ulid.Now(), rand.Reader)
				if err != nil {
					return err
				}
				logger = log.New(stderr, fmt.Sprintf("feeder %v: ", runID), log.Lmsgprefix)
			}

			r := newRelay(stdout, maxLine, logger)

			if len(args) > 0 {
				if err := r.feedFile(args[0]); err != nil {
					return err
				}
			}

			if err := r.feed("stdin", stdin); err != nil {
				return err
			}

			if *flagStats {
				r.printStats(stderr)
			}

			return nil
		},
	}

	return rootCmd.ParseAndRun(ctx, args[1:])
}

func parseMaxLine(s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("max-line: %w", err)
	}

	if n > math.MaxInt {
		return 0, fmt.Errorf("max-line: out of range: %v", s)
	}

	return int(n), nil
}

// noColor reports whether errors written to f should stay plain. Errors go to
// stderr, which is often a terminal while stdout is a pipe.
func noColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return true
	}

	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

var colorError = ansicolor.New(ansicolor.FgRed)
