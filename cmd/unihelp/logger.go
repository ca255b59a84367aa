package main

import (
	"fmt"
	"os"

	"github.com/unihelp/unihelp/pkg/logger"
)

const (
	logLevelEnvVar  = "LOG_LEVEL"
	logFileEnvVar   = "LOG_FILE"
	logFormatEnvVar = "LOG_FORMAT"
)

// initLogger installs the process-wide logger. Priority: CLI flags >
// environment variables > defaults. The returned cleanup closes the log
// file when one was opened; it is nil otherwise.
func initLogger(cliLevel, cliFile, cliFormat string) (func(), error) {
	levelStr := cliLevel
	if levelStr == "" {
		levelStr = os.Getenv(logLevelEnvVar)
	}

	logFile := cliFile
	if logFile == "" {
		logFile = os.Getenv(logFileEnvVar)
	}

	format := cliFormat
	if format == "" {
		format = os.Getenv(logFormatEnvVar)
	}
	if format == "" {
		format = "text"
	}

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	output := os.Stderr
	var cleanup func()
	if logFile != "" {
		file, closeFile, err := logger.OpenLogFile(logFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
		cleanup = closeFile
	}

	logger.Init(level, output, format)
	return cleanup, nil
}
