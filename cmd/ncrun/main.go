// cmd/ncrun/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"nctrace/internal/config"
	"nctrace/internal/interp"
	"nctrace/internal/repl"
	"nctrace/internal/sink"
	"nctrace/internal/table"
	"nctrace/internal/value"
)

// commandAliases gives each subcommand a single-letter shorthand.
var commandAliases = map[string]string{
	"r": "run",
	"i": "repl",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return
	}

	switch cmd {
	case "repl":
		if err := runRepl(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "run":
		if err := runFile(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	default:
		// Bare "ncrun <file>" is shorthand for "ncrun run <file>".
		if err := runFile(args); err != nil {
			log.Fatalf("Error: %v", err)
		}
	}
}

type cliFlags struct {
	axes               []string
	extraAxes          []string
	initialStatePath   string
	iterationLimit     int
	disableForwardFill bool
	sinkKind           string
	outputPath         string
	inputPath          string
}

// parseFlags hand-parses os.Args the way cmd/sentra/main.go does: a
// simple switch over recognized flag spellings, no flags/cobra/viper.
func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{iterationLimit: config.DefaultIterationLimit}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			i++
			if i >= len(args) {
				return "", fmt.Errorf("flag %q requires a value", arg)
			}
			return args[i], nil
		}

		switch arg {
		case "-a", "--axes":
			v, err := next()
			if err != nil {
				return nil, err
			}
			f.axes = splitCSV(v)
		case "-e", "--extra-axes":
			v, err := next()
			if err != nil {
				return nil, err
			}
			f.extraAxes = splitCSV(v)
		case "-i", "--initial-state":
			v, err := next()
			if err != nil {
				return nil, err
			}
			f.initialStatePath = v
		case "-l", "--iteration-limit":
			v, err := next()
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid --iteration-limit %q: %w", v, err)
			}
			f.iterationLimit = n
		case "-f", "--disable-forward-fill":
			f.disableForwardFill = true
		case "-o", "--sink":
			v, err := next()
			if err != nil {
				return nil, err
			}
			f.sinkKind = v
		case "--output":
			v, err := next()
			if err != nil {
				return nil, err
			}
			f.outputPath = v
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unrecognized flag %q", arg)
			}
			if f.inputPath != "" {
				return nil, fmt.Errorf("unexpected extra argument %q", arg)
			}
			f.inputPath = arg
		}
	}
	return f, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runFile(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.inputPath == "" {
		return fmt.Errorf("missing input file")
	}

	cfg := buildConfig(f)
	ip, err := interp.New(cfg)
	if err != nil {
		return err
	}

	if f.initialStatePath != "" {
		defaultsSrc, err := os.ReadFile(f.initialStatePath)
		if err != nil {
			return fmt.Errorf("reading initial-state program: %w", err)
		}
		if err := ip.RunDefaults(string(defaultsSrc)); err != nil {
			return fmt.Errorf("running initial-state program: %w", err)
		}
	}

	source, err := os.ReadFile(f.inputPath)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	rows, err := ip.Run(string(source))
	if err != nil {
		return fmt.Errorf("interpreting %s: %w", f.inputPath, err)
	}

	t, err := table.Finalize(toPlainRows(rows), cfg)
	if err != nil {
		return fmt.Errorf("finalizing table: %w", err)
	}

	outPath, kind := resolveOutput(f)
	dst, err := selectSink(kind, outPath)
	if err != nil {
		return err
	}
	if err := dst.Write(t); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	fmt.Printf("wrote %d rows to %s\n", t.NRows, outPath)
	return nil
}

func runRepl(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg := buildConfig(f)
	return repl.Start(cfg, os.Stdin, os.Stdout)
}

func buildConfig(f *cliFlags) *config.Config {
	var cfg *config.Config
	if len(f.axes) > 0 {
		cfg = config.New(f.axes)
	} else {
		cfg = config.New(nil)
	}
	cfg.ExtraAxes = f.extraAxes
	cfg.IterationLimit = f.iterationLimit
	cfg.DisableForwardFill = f.disableForwardFill
	return cfg
}

// resolveOutput derives the output path from the input path with its
// extension replaced, matching the Rust original's default, unless
// --output overrides it. The sink kind is taken from --sink, or else
// inferred from the output extension, defaulting to csv.
func resolveOutput(f *cliFlags) (path string, kind string) {
	kind = f.sinkKind
	path = f.outputPath
	if path == "" {
		ext := ".csv"
		if kind == "sqlite" {
			ext = ".db"
		}
		base := strings.TrimSuffix(f.inputPath, filepath.Ext(f.inputPath))
		path = base + ext
	}
	if kind == "" {
		if strings.EqualFold(filepath.Ext(path), ".db") || strings.EqualFold(filepath.Ext(path), ".sqlite") {
			kind = "sqlite"
		} else {
			kind = "csv"
		}
	}
	return path, kind
}

func selectSink(kind, path string) (sink.Sink, error) {
	switch kind {
	case "csv":
		return sink.NewCSVSink(path), nil
	case "sqlite":
		return sink.NewSQLiteSink(path, ""), nil
	default:
		return nil, fmt.Errorf("unknown sink %q (expected csv or sqlite)", kind)
	}
}

func toPlainRows(rows []interp.Row) []map[string]value.Value {
	out := make([]map[string]value.Value, len(rows))
	for i, r := range rows {
		out[i] = map[string]value.Value(r)
	}
	return out
}

func showUsage() {
	fmt.Println("ncrun - NC/G-code dialect interpreter")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ncrun run [flags] <file.nc>   Interpret a program and write its table  (alias: r)")
	fmt.Println("  ncrun repl [flags]            Start an interactive block-at-a-time REPL (alias: i)")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -a, --axes <list>             Comma-separated axis identifiers (default: N,X,Y,Z,A,B,C,D,E,F,S,U,V,RA1..RA6)")
	fmt.Println("  -e, --extra-axes <list>       Comma-separated axis identifiers appended to the default/given set")
	fmt.Println("  -i, --initial-state <file>    Program run first, for its state side effects only")
	fmt.Println("  -l, --iteration-limit <n>     Loop iteration cap (default 10000)")
	fmt.Println("  -f, --disable-forward-fill    Disable modal/axis column forward-fill")
	fmt.Println("  -o, --sink <csv|sqlite>       Output format (default: inferred from --output's extension, else csv)")
	fmt.Println("      --output <path>           Output path (default: input path with its extension replaced)")
}
