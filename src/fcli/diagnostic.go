package fcli

import (
	"fmt"
	"strings"

	"github.com/fabrique-build/fabrique/src/dag"
)

// SourceText maps a filename to its contents, letting Render show the
// offending line when it's available — the same reader-keyed-by-name
// pattern as the teacher's errorStack.AddReader, without the readers
// actually doing file I/O (that stays outside this module's scope, §1).
type SourceText map[string][]byte

// Render formats a dag.Error as a one-or-several-line diagnostic: the
// message and location on the first line, then the offending source line
// with a caret under the column, the way the teacher's
// errorStack.errorMessage does it (src/parse/asp/errors.go). coloured
// selects the ANSI-highlighted form; callers pick that from
// fcli.StdErrIsATerminal.
func Render(err *dag.Error, src SourceText, coloured bool) string {
	pos := err.Range.From
	header := fmt.Sprintf("%s:%d:%d: %s: %s", pos.Filename, pos.Line, pos.Column, err.Kind, err.Message)

	text, ok := src[pos.Filename]
	if !ok || pos.Line <= 0 {
		return header + "\n"
	}
	lines := strings.Split(string(text), "\n")
	if pos.Line > len(lines) {
		return header + "\n"
	}
	line := lines[pos.Line-1]
	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		return header + "\n"
	}
	caret := strings.Repeat(" ", col) + "^"

	if !coloured {
		return fmt.Sprintf("%s\n%s\n%s\n", header, line, caret)
	}
	const (
		boldWhite = "\x1b[1;37m"
		boldRed   = "\x1b[1;31m"
		reset     = "\x1b[0m"
	)
	return fmt.Sprintf("%s%s%s\n%s\n%s%s%s\n", boldWhite, header, reset, line, boldRed, caret, reset)
}
