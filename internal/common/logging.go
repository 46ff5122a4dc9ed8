package common

import (
	"log"
	"os"
)

var (
	logger = log.New(os.Stderr, "[catread] ", log.LstdFlags|log.Lmicroseconds)
)

func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// SetOutput redirects the package logger, e.g. into a rotating file writer.
func SetOutput(w interface{ Write([]byte) (int, error) }) {
	logger.SetOutput(w)
}
