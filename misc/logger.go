package misc

import (
	"os"
	"strings"

	"github.com/BrugadaSyndrome/bslogger"
)

func ParseVerbosity(name string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(name)); v {
	case "":
		return "normal", nil
	case "minimal", "normal", "all":
		return v, nil
	}
	return "", NewConfigError("verbosity", "unknown verbosity %q, want minimal, normal or all", name)
}

// NewLogger builds a named logger at the verbosity parsed by ParseVerbosity. Unknown values log at
// normal verbosity. When logFile is set every message is also written to it.
func NewLogger(name string, verbosity string, logFile *os.File) bslogger.Logger {
	switch verbosity {
	case "minimal":
		return bslogger.NewLogger(name, bslogger.Minimal, logFile)
	case "all":
		return bslogger.NewLogger(name, bslogger.All, logFile)
	}
	return bslogger.NewLogger(name, bslogger.Normal, logFile)
}
