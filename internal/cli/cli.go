// Package cli wires internal/patterns and internal/scanner into the gorep
// command: flag parsing, output formatting, concurrency and exit-code
// policy. The core pattern engine knows nothing of any of this.
package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/briantigerchow/gorep/internal/patterns"
	"github.com/briantigerchow/gorep/internal/scanner"
)

// concurrencyThreshold is the file count above which scanAll fans the scan
// out across a bounded worker pool instead of scanning sequentially.
const concurrencyThreshold = 4

// Options holds every flag gorep accepts.
type Options struct {
	Pattern          string
	Recursive        bool
	LineNumber       bool
	Invert           bool
	FilesWithMatches bool
	Count            bool
	Verbose          int
}

// usageError signals a problem with the invocation itself (bad flags,
// missing pattern) as distinct from a MalformedPattern compile error.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// Run parses args against stdin/stdout/stderr and returns the process exit
// code: 0 if any line matched, 1 if none did (or a file was unreadable and
// nothing else matched), 2 for a usage or pattern-compile error.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &Options{}
	var matchedAny bool
	var scanErr error

	root := &cobra.Command{
		Use:           "gorep -E <pattern> [file ...]",
		Short:         "gorep reports which input lines match a pattern",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, positional []string) error {
			pattern := opts.Pattern
			if pattern == "" {
				if len(positional) == 0 {
					return &usageError{msg: "no pattern given: pass -E/--pattern or a positional pattern"}
				}
				pattern = positional[0]
				positional = positional[1:]
			}

			logger := newLogger(stderr, opts.Verbose)
			logFlags(cmd, logger)

			compiled, err := patterns.Compile(pattern)
			if err != nil {
				return err
			}

			matchedAny, scanErr = scanAll(compiled, positional, opts, logger, stdin, stdout)
			return nil
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	flags := root.Flags()
	flags.StringVarP(&opts.Pattern, "pattern", "E", "", "pattern to match against each line")
	flags.BoolVarP(&opts.Recursive, "recursive", "r", false, "recurse into directory operands")
	flags.BoolVarP(&opts.LineNumber, "line-number", "n", false, "prefix each match with its 1-based line number")
	flags.BoolVarP(&opts.Invert, "invert", "v", false, "print lines that do NOT match")
	flags.BoolVarP(&opts.FilesWithMatches, "files-with-matches", "l", false, "print only the names of files containing a match")
	flags.BoolVarP(&opts.Count, "count", "c", false, "print only the count of matching lines")
	flags.CountVar(&opts.Verbose, "verbose", "increase logging verbosity (repeatable)")

	// A bad pattern (*patterns.CompileError) or a bad invocation (*usageError)
	// is returned directly from RunE and lands here via Execute's own error.
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	// A per-file read error during scanning is reported but not fatal: it
	// does not by itself make the run a usage or compile failure.
	if scanErr != nil {
		fmt.Fprintln(stderr, scanErr)
	}

	if matchedAny {
		return 0
	}
	return 1
}

func newLogger(w io.Writer, verbosity int) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch {
	case verbosity >= 2:
		logger.SetLevel(logrus.TraceLevel)
	case verbosity == 1:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

// logFlags records every explicitly-set flag at debug level, useful when
// diagnosing why a scan behaved a particular way.
func logFlags(cmd *cobra.Command, logger *logrus.Logger) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			logger.Debugf("flag --%s=%s", f.Name, f.Value.String())
		}
	})
}

// scanAll reads stdin (no operands) or each file/directory operand and
// reports whether any line matched compiled (or did not, under --invert).
// In file mode it first writes formatted output for every such line to
// stdout; in stdin mode it writes nothing. A per-file read error is logged
// and does not abort the scan of the remaining operands; the first such
// error is returned once scanning finishes.
func scanAll(compiled *patterns.Pattern, operands []string, opts *Options, logger *logrus.Logger, stdin io.Reader, stdout io.Writer) (bool, error) {
	if len(operands) == 0 {
		src := scanner.Stdin(stdin)
		if src.Err != nil {
			return false, errors.Wrap(src.Err, "reading stdin")
		}
		matched := false
		for _, line := range src.Lines {
			if matchesLine(compiled, line, opts.Invert) {
				matched = true
			}
		}
		return matched, nil
	}

	sources, err := scanner.Files(operands, opts.Recursive)
	if err != nil {
		return false, err
	}

	results := make([]fileResult, len(sources))
	multiFile := len(sources) > 1

	if len(sources) > concurrencyThreshold {
		logger.Debugf("scanning %d files concurrently (GOMAXPROCS=%d)", len(sources), runtime.GOMAXPROCS(0))
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, src := range sources {
			g.Go(func() error {
				results[i] = processSource(compiled, src, opts, multiFile)
				return nil
			})
		}
		_ = g.Wait() // processSource never returns an error; failures live in fileResult
	} else {
		for i, src := range sources {
			results[i] = processSource(compiled, src, opts, multiFile)
		}
	}

	matchedAny := false
	var firstErr error
	for _, r := range results {
		if r.err != nil {
			logger.Warnf("%s: %v", r.path, r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		if r.matched {
			matchedAny = true
		}
		for _, line := range r.output {
			fmt.Fprintln(stdout, line)
		}
	}

	return matchedAny, firstErr
}

type fileResult struct {
	path    string
	matched bool
	output  []string
	err     error
}

func processSource(compiled *patterns.Pattern, src scanner.Source, opts *Options, multiFile bool) fileResult {
	if src.Err != nil {
		return fileResult{path: src.Path, err: src.Err}
	}

	result := fileResult{path: src.Path}
	matchCount := 0

	for lineNum, line := range src.Lines {
		if !matchesLine(compiled, line, opts.Invert) {
			continue
		}
		matchCount++
		result.matched = true
		if opts.FilesWithMatches || opts.Count {
			continue
		}
		result.output = append(result.output, formatLine(src.Path, lineNum+1, line, opts, multiFile))
	}

	switch {
	case opts.FilesWithMatches:
		if result.matched {
			result.output = []string{src.Path}
		}
	case opts.Count:
		label := fmt.Sprintf("%d", matchCount)
		if multiFile {
			label = src.Path + ":" + label
		}
		result.output = []string{label}
		result.matched = matchCount > 0
	}

	return result
}

func matchesLine(compiled *patterns.Pattern, line string, invert bool) bool {
	matched := compiled.Match(line)
	if invert {
		return !matched
	}
	return matched
}

func formatLine(path string, lineNum int, line string, opts *Options, multiFile bool) string {
	prefix := ""
	if multiFile {
		prefix = path + ":"
	}
	if opts.LineNumber {
		prefix += fmt.Sprintf("%d:", lineNum)
	}
	return prefix + line
}
