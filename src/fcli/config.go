package fcli

import (
	"os"
	"path/filepath"
	"strings"

	gcfg "github.com/please-build/gcfg"
)

// ConfigFileName is the repo-level config file, checked in to the repo root
// alongside the root fabfile (mirrors the teacher's .plzconfig).
const ConfigFileName = ".fabconfig"

// LocalConfigFileName is a repo-level config file that overrides
// ConfigFileName but is not meant to be checked in (per-developer overrides).
const LocalConfigFileName = ".fabconfig.local"

// MachineConfigFileName is a machine-wide override, read before the repo
// configs so repo settings win.
const MachineConfigFileName = "/etc/fabconfig"

// UserConfigFileName is a per-user override, shared across that user's repos.
const UserConfigFileName = "~/.fab/fabconfig"

// Configuration holds every compiler-level setting SPEC_FULL.md's ambient
// stack needs: where to find plugins, how many files to parse concurrently,
// and where generated output lives by default. It deliberately does not
// grow the language-level settings the teacher's Configuration carries
// (build configs, container backends, per-language tool paths) — those
// concern a build executor, which is out of scope (§ Non-goals).
type Configuration struct {
	Fab struct {
		NumParseThreads int      `help:"Number of fabfiles to parse concurrently." example:"6"`
		PluginPath      []string `help:"Directories searched for dynamically-loaded plugins, in order, after the registered built-in plugins (§4.7)."`
		OutputRoot      string   `help:"Default root directory for generated output files, used when the command line doesn't override it."`
	} `help:"The [fab] section contains settings controlling how the compiler itself parses and resolves fabfiles."`
}

// DefaultConfiguration returns a Configuration with the same values a fresh
// checkout gets before any config file is read.
func DefaultConfiguration() *Configuration {
	config := &Configuration{}
	config.Fab.NumParseThreads = 1
	config.Fab.OutputRoot = "fab-out"
	return config
}

func readConfigFile(config *Configuration, filename string) error {
	if strings.HasPrefix(filename, "~/") {
		if home, herr := os.UserHomeDir(); herr == nil {
			filename = filepath.Join(home, filename[2:])
		}
	}
	log.Debug("reading config from %s...", filename)
	if err := gcfg.ReadFileInto(config, filename); err != nil && os.IsNotExist(err) {
		return nil
	} else if gcfg.FatalOnly(err) != nil {
		return err
	} else if err != nil {
		log.Warning("error in config file %s: %s", filename, err)
	}
	return nil
}

// ReadConfigFiles reads each named config file in order, merging it into a
// freshly-defaulted Configuration — later files win over earlier ones, the
// same layering order the teacher's ReadConfigFiles uses (machine, then
// user, then repo, then repo-local).
func ReadConfigFiles(filenames []string) (*Configuration, error) {
	config := DefaultConfiguration()
	for _, filename := range filenames {
		if err := readConfigFile(config, filename); err != nil {
			return config, err
		}
	}
	return config, nil
}
