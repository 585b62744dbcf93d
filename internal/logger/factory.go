package logger

import (
	"io"

	"github.com/charmbracelet/log"
)

const (
	serverPrefix = "server"
	cliPrefix    = "cli"
)

// Server returns the logger of the IPC loop.
func Server() *log.Logger {
	return New(serverPrefix)
}

// CLI returns the logger of the interactive mode.
func CLI() *log.Logger {
	return New(cliPrefix)
}

// Discard returns a logger that drops everything, used by tests.
func Discard() *log.Logger {
	return NewWithConfig(io.Discard, "", log.FatalLevel, false, false, log.TextFormatter)
}
