package internal

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName is used for the config file name and the env var prefix
	DefaultAppName      = "fastrecord"
	DefaultEnvPrefix    = strings.ToUpper(DefaultAppName)
	DefaultConfigName   = "fastrecord"
	DefaultVocabFile    = "vocab.txt"
	DefaultClassFile    = "class.txt"
	DefaultRecordSuffix = ".records."

	// Default vocabulary and tag settings
	DefaultPaddingToken = "<PAD>"
	DefaultUnknownToken = "<UNK>"
	DefaultPaddingTag   = "<PAD>"
	DefaultSeparator    = "\t"

	// Default build settings
	DefaultSequenceLength = 32
	DefaultMaxVocabSize   = 10000
	DefaultFormat         = "ipc"
	DefaultLang           = "char"
	DefaultNormalize      = "none"
	DefaultLogLevel       = "info"
)

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// GetLoggerWithLevel returns the default logger filtered at the named level.
// Unknown level names fall back to info.
func GetLoggerWithLevel(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return GetLogger().Level(lvl)
}
