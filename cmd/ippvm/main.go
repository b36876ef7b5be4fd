// Command ippvm interprets an IPPcode22 XML program against a line-oriented
// input channel, writing program output to stdout and diagnostics to
// stderr.
//
// Flag parsing is hand-rolled over os.Args, in the style of the teacher
// CLI's manual argument walk, rather than stdlib flag: the stats
// selectors (--insts/--hot/--vars) must be recorded in the order they
// appear on the command line, which flag.Parse's map-backed FlagSet
// discards.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"ippvm/internal/errors"
	"ippvm/internal/interpreter"
	"ippvm/internal/ioline"
	"ippvm/internal/program"
	"ippvm/internal/stats"
	"ippvm/internal/xmlsrc"
)

const usage = `usage: ippvm --source=FILE | --input=FILE [options]

  --help            print this message and exit
  --source=PATH     XML program source (default: stdin)
  --input=PATH      line-oriented input for READ (default: stdin)
  --stats=PATH      enable statistics output to PATH
  --insts           record total executed instructions (requires --stats)
  --hot             record the order of the most executed instruction (requires --stats)
  --vars            record the peak initialized-variable count (requires --stats)
`

type config struct {
	help          bool
	sourcePath    string
	hasSource     bool
	inputPath     string
	hasInput      bool
	statsPath     string
	hasStats      bool
	statsSelectors []stats.Field
}

func parseArgs(args []string) (config, error) {
	var cfg config
	for _, arg := range args {
		switch {
		case arg == "--help":
			cfg.help = true
		case strings.HasPrefix(arg, "--source="):
			cfg.sourcePath = strings.TrimPrefix(arg, "--source=")
			cfg.hasSource = true
		case strings.HasPrefix(arg, "--input="):
			cfg.inputPath = strings.TrimPrefix(arg, "--input=")
			cfg.hasInput = true
		case strings.HasPrefix(arg, "--stats="):
			cfg.statsPath = strings.TrimPrefix(arg, "--stats=")
			cfg.hasStats = true
		case arg == "--insts":
			cfg.statsSelectors = append(cfg.statsSelectors, stats.FieldInsts)
		case arg == "--hot":
			cfg.statsSelectors = append(cfg.statsSelectors, stats.FieldHot)
		case arg == "--vars":
			cfg.statsSelectors = append(cfg.statsSelectors, stats.FieldVars)
		default:
			return config{}, errors.New(errors.BadArg, "unrecognized argument %q", arg)
		}
	}
	return cfg, nil
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}

	if cfg.help {
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "--help is exclusive with all other arguments")
			os.Exit(int(errors.BadArg))
		}
		fmt.Print(usage)
		os.Exit(0)
	}

	if !cfg.hasSource && !cfg.hasInput {
		fail(errors.New(errors.BadArg, "at least one of --source or --input is required"))
	}
	if len(cfg.statsSelectors) > 0 && !cfg.hasStats {
		fail(errors.New(errors.BadArg, "--insts/--hot/--vars require --stats"))
	}

	var sourceFile *os.File
	if cfg.hasSource {
		f, err := os.Open(cfg.sourcePath)
		if err != nil {
			fail(errors.Wrap(errors.InputFile, err, "failed to open source file %q", cfg.sourcePath))
		}
		defer f.Close()
		sourceFile = f
	} else {
		sourceFile = os.Stdin
	}

	rawInstrs, err := xmlsrc.Parse(bufio.NewReader(sourceFile))
	if err != nil {
		fail(err)
	}
	if len(rawInstrs) == 0 {
		os.Exit(0)
	}

	prog, err := program.Build(rawInstrs)
	if err != nil {
		fail(err)
	}

	var inputPath string
	if cfg.hasInput {
		inputPath = cfg.inputPath
	}
	input, err := ioline.Open(inputPath)
	if err != nil {
		fail(err)
	}
	if !cfg.hasInput && isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprintln(os.Stderr, "reading READ input from the terminal; press ctrl-d to signal end-of-input")
	}

	var rec *stats.Recorder
	if cfg.hasStats {
		rec = stats.New()
		for _, f := range cfg.statsSelectors {
			rec.AddField(f)
		}
	}

	eng := interpreter.New(prog, input, os.Stdout, os.Stderr, rec)
	if cfg.hasStats {
		eng.SetStatsPath(cfg.statsPath)
	}

	code, err := eng.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(code)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(errors.ExitCode(err))
}
