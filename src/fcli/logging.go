// Package fcli carries the ambient command-line stack: logging
// initialisation, layered configuration loading, and flag-struct scaffolding
// for the fab driver binary (§4.11).
package fcli

import (
	"os"
	"regexp"

	logging "gopkg.in/op/go-logging.v1"
	"golang.org/x/term"

	cli "github.com/peterebden/go-cli-init/v5"
)

var log = logging.MustGetLogger("fcli")

// Verbosity is a flag type for logging verbosity, following the teacher's
// src/cli.Verbosity alias so the same int-to-level mapping and flag parsing
// behaviour carries over.
type Verbosity = cli.Verbosity

// StdErrIsATerminal is true if stderr is an interactive terminal, used to
// decide whether log output (and diagnostics, see Render in this
// package) gets ANSI colour. golang.org/x/term supersedes the teacher's
// golang.org/x/crypto/ssh/terminal for this check.
var StdErrIsATerminal = term.IsTerminal(int(os.Stderr.Fd()))

// StripAnsi finds ANSI escape sequences so they can be stripped from output
// destined for a non-terminal (a log file, a CI console).
var StripAnsi = regexp.MustCompile("\x1b[^m]+m")

var logLevel = logging.WARNING

// InitLogging sets the process' logging level and installs a stderr
// backend, coloured when stderr is a terminal. There's no interactive
// console display to drive here (§ Non-goals carry no build executor, no
// live progress UI) so this is a single plain backend rather than the
// teacher's ring-buffer LogBackend.
func InitLogging(verbosity Verbosity) {
	logLevel = logging.Level(verbosity)
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logFormatter(StdErrIsATerminal))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logLevel, "")
	logging.SetBackend(leveled)
}

func logFormatter(coloured bool) logging.Formatter {
	format := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if coloured {
		format = "%{color}" + format + "%{color:reset}"
	}
	return logging.MustStringFormatter(format)
}
