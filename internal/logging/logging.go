// Package logging builds the logrus logger instance used for the
// compiler's non-diagnostic progress output (compile-time directive
// tracing, scratch cleanup failures) — distinct from the single fatal
// diagnostic line spec.md §7 reserves for compile errors.
//
// Grounded on other_examples/golox's logrus usage (package-level
// logrus.Debugln/Panicln calls with no custom formatter); the single-line
// easy-formatter setup below is the idiomatic CLI-tool refinement of that
// pattern. Libraries: github.com/sirupsen/logrus,
// github.com/t-tomalak/logrus-easy-formatter.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
)

// New returns a logger writing single-line records to stderr, at Debug
// level when verbose is true and Warn level otherwise.
func New(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&easy.Formatter{
		TimestampFormat: "15:04:05",
		LogFormat:       "[%lvl%] %time% - %msg%\n",
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
