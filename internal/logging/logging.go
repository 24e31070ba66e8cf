package logging

import (
	"log"
	"os"
)

var (
	quiet  = false
	logger = log.New(os.Stdout, "", log.LstdFlags)
)

// Quiet suppresses all log output. Client subcommands enable this so tool
// output stays machine-readable.
func Quiet() {
	quiet = true
}

// Verbose re-enables log output.
func Verbose() {
	quiet = false
}

// Infof logs a formatted info message.
func Infof(format string, v ...any) {
	if !quiet {
		logger.Printf(format, v...)
	}
}

// Warnf logs a formatted warning message.
func Warnf(format string, v ...any) {
	if !quiet {
		logger.Printf("WARN "+format, v...)
	}
}

// Errorf logs a formatted error message.
func Errorf(format string, v ...any) {
	if !quiet {
		logger.Printf("ERROR "+format, v...)
	}
}

// Debugf logs a formatted debug message.
func Debugf(format string, v ...any) {
	if !quiet {
		logger.Printf("DEBUG "+format, v...)
	}
}
