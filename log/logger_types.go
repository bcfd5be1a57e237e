package log

import (
	"io"
	"sync"
)

const (
	timestampFormat = " 02/01/2006 15:04:05 "
	spacer          = " | "
)

var (
	subLoggers = map[string]*SubLogger{}

	// read/write mutex for logger
	mu = &sync.RWMutex{}

	logger = Logger{
		TimestampFormat: timestampFormat,
		Spacer:          spacer,
		InfoHeader:      "[INFO]",
		WarnHeader:      "[WARN]",
		DebugHeader:     "[DEBUG]",
		ErrorHeader:     "[ERROR]",
	}
)

// Logger holds the formatting settings applied to every sub logger
type Logger struct {
	TimestampFormat                                  string
	Spacer                                           string
	InfoHeader, ErrorHeader, DebugHeader, WarnHeader string
}

// Levels flags for each sub logger type
type Levels struct {
	Info, Debug, Warn, Error bool
}

// SubLogger defines a sub logger can be used externally for packages wanted to
// leverage logger library
type SubLogger struct {
	name   string
	levels Levels
	output io.Writer
}

// SubLoggerConfig holds sub logger configuration settings loaded from config
type SubLoggerConfig struct {
	Name  string `json:"name,omitempty"`
	Level string `json:"level"`
}
