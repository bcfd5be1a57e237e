package log

import (
	"fmt"
	"io"
	"time"
)

// SetOutput redirects a sub logger's output, primarily for tests
func (sl *SubLogger) SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	sl.output = w
}

func (sl *SubLogger) stage(header, data string) {
	if sl == nil || sl.output == nil {
		return
	}
	fmt.Fprintf(sl.output, "%s%s%s%s%s\n",
		header,
		time.Now().Format(logger.TimestampFormat),
		sl.name,
		logger.Spacer,
		data)
}

// Info takes a pointer subLogger struct and string and sends it to the output
func Info(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if sl == nil || !sl.levels.Info {
		return
	}
	sl.stage(logger.InfoHeader, data)
}

// Infoln takes a pointer subLogger struct and interface and sends it to the output
func Infoln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if sl == nil || !sl.levels.Info {
		return
	}
	sl.stage(logger.InfoHeader, fmt.Sprintln(v...))
}

// Infof takes a pointer subLogger struct, string and interface formats and sends it to the output
func Infof(sl *SubLogger, data string, v ...any) {
	Info(sl, fmt.Sprintf(data, v...))
}

// Debug takes a pointer subLogger struct and string and sends it to the output
func Debug(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if sl == nil || !sl.levels.Debug {
		return
	}
	sl.stage(logger.DebugHeader, data)
}

// Debugln takes a pointer subLogger struct and interface and sends it to the output
func Debugln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if sl == nil || !sl.levels.Debug {
		return
	}
	sl.stage(logger.DebugHeader, fmt.Sprintln(v...))
}

// Debugf takes a pointer subLogger struct, string and interface formats and sends it to the output
func Debugf(sl *SubLogger, data string, v ...any) {
	Debug(sl, fmt.Sprintf(data, v...))
}

// Warn takes a pointer subLogger struct and string and sends it to the output
func Warn(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	if sl == nil || !sl.levels.Warn {
		return
	}
	sl.stage(logger.WarnHeader, data)
}

// Warnln takes a pointer subLogger struct and interface and sends it to the output
func Warnln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if sl == nil || !sl.levels.Warn {
		return
	}
	sl.stage(logger.WarnHeader, fmt.Sprintln(v...))
}

// Warnf takes a pointer subLogger struct, string and interface formats and sends it to the output
func Warnf(sl *SubLogger, data string, v ...any) {
	Warn(sl, fmt.Sprintf(data, v...))
}

// Error takes a pointer subLogger struct and interface and sends it to the output
func Error(sl *SubLogger, data ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if sl == nil || !sl.levels.Error {
		return
	}
	sl.stage(logger.ErrorHeader, fmt.Sprint(data...))
}

// Errorln takes a pointer subLogger struct and interface and sends it to the output
func Errorln(sl *SubLogger, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if sl == nil || !sl.levels.Error {
		return
	}
	sl.stage(logger.ErrorHeader, fmt.Sprintln(v...))
}

// Errorf takes a pointer subLogger struct, string and interface formats and sends it to the output
func Errorf(sl *SubLogger, data string, v ...any) {
	Error(sl, fmt.Sprintf(data, v...))
}
