package misc

import (
	"fmt"

	"github.com/BrugadaSyndrome/bslogger"
)

const (
	Fatal Severity = iota
	Error
	Warning
	Info
	Debug
)

type Severity int

func (s Severity) String() string {
	return []string{
		"Fatal", "Error", "Warning", "Info", "Debug",
	}[s]
}

func CheckError(err error, logger bslogger.Logger, severity Severity) {
	if err != nil {
		switch severity {
		case Fatal:
			logger.Fatal(err.Error())
		case Error:
			logger.Error(err.Error())
		case Warning:
			logger.Warning(err.Error())
		case Info:
			logger.Info(err.Error())
		case Debug:
			logger.Debug(err.Error())
		default:
			logger.Fatal(err.Error())
		}
	}
}

// ConfigError reports a configuration value that can never produce a valid render.
// It is always detected before any pixel work starts.
type ConfigError struct {
	Field  string
	Reason string
}

func NewConfigError(field string, format string, values ...interface{}) *ConfigError {
	return &ConfigError{
		Field:  field,
		Reason: fmt.Sprintf(format, values...),
	}
}

func (ce *ConfigError) Error() string {
	if ce.Field == "" {
		return "config error: " + ce.Reason
	}
	return fmt.Sprintf("config error: %s: %s", ce.Field, ce.Reason)
}
