package fcli

import (
	"github.com/peterebden/go-cli-init/v5/flags"
)

// ParseFlags parses os.Args into opts and returns the chosen subcommand
// name, exiting the process on a parse error or --help — the same contract
// as the teacher's flags.ParseFlagsOrDie (tools/please_go/please_go.go),
// just under a name that doesn't imply "or die" to callers that already
// expect ParseFlags to be terminal on error.
func ParseFlags(appName string, opts interface{}) string {
	return flags.ParseFlagsOrDie(appName, opts)
}
