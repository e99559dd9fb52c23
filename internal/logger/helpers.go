package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	EnvLevel = "BORG_EXPORTER_LOG_LEVEL" // debug, info, warn, error
	EnvJSON  = "BORG_EXPORTER_LOG_JSON"  // "1" for JSON lines
)

// ConfigureFromEnv sets up the logger from the environment. Colors are only
// used for console output on a terminal.
func ConfigureFromEnv() {
	level := strings.ToLower(strings.TrimSpace(os.Getenv(EnvLevel)))
	jsonOut := strings.TrimSpace(os.Getenv(EnvJSON)) == "1"

	Configure(Options{
		Level: level,
		JSON:  jsonOut,
		Color: !jsonOut && isatty.IsTerminal(os.Stderr.Fd()),
		Out:   os.Stderr,
	})
}

func sprintf(msg string, args ...interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
