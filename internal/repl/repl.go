// Package repl provides an interactive block-at-a-time front end to the
// interpreter: scan a line, run it, print the result, repeat. Each line
// is interpreted as one NC block against a State that persists across
// lines, exactly as a single program's blocks would.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"nctrace/internal/config"
	"nctrace/internal/interp"
)

// Start runs the REPL loop, reading lines from in and writing prompts
// and results to out, until in is exhausted or a line is "exit".
func Start(cfg *config.Config, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "ncrun REPL | type 'exit' to quit")

	ip, err := interp.New(cfg)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, ">>> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		rows, err := ip.Run(line + "\n")
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		for _, row := range rows {
			fmt.Fprintln(out, formatRow(row))
		}
	}
}

func formatRow(row interp.Row) string {
	if len(row) == 0 {
		return "{}"
	}
	s := "{"
	first := true
	for name, v := range row {
		if !first {
			s += ", "
		}
		first = false
		s += fmt.Sprintf("%s=%s", name, v.String())
	}
	return s + "}"
}
