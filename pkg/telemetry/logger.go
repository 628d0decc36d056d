package telemetry

import (
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// NewLogger returns the process logger. Messages with V(n) above verbosity
// are dropped.
func NewLogger(name string, verbosity int) logr.Logger {
	stdr.SetVerbosity(verbosity)
	return stdr.NewWithOptions(
		log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds),
		stdr.Options{LogCaller: stdr.Error},
	).WithName(name)
}
