package log

import (
	"fmt"
	"os"
	"strings"
)

// SetupSubLoggers configures all sub loggers with provided configuration values
func SetupSubLoggers(s []SubLoggerConfig) {
	for x := range s {
		err := configureSubLogger(strings.ToUpper(s[x].Name), s[x].Level)
		if err != nil {
			continue
		}
	}
}

// SetGlobalLogLevel applies one level string to every registered sub logger
func SetGlobalLogLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	for x := range subLoggers {
		subLoggers[x].levels = splitLevel(level)
	}
}

func configureSubLogger(subLogger, levels string) error {
	mu.Lock()
	defer mu.Unlock()
	logPtr, found := subLoggers[subLogger]
	if !found {
		return fmt.Errorf("sub logger %v not found", subLogger)
	}
	logPtr.levels = splitLevel(levels)
	return nil
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(level, "|")
	for x := range enabledLevels {
		switch enabledLevels[x] {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

func registerNewSubLogger(subLogger string) *SubLogger {
	temp := SubLogger{
		name:   strings.ToUpper(subLogger),
		output: os.Stdout,
	}
	temp.levels = splitLevel("INFO|WARN|ERROR")
	subLoggers[temp.name] = &temp
	return &temp
}

// register all loggers at package init()
func init() {
	Global = registerNewSubLogger("LOG")

	Engine = registerNewSubLogger("ENGINE")
	Execution = registerNewSubLogger("EXECUTION")
	PortfolioMgr = registerNewSubLogger("PORTFOLIO")
	DataMgr = registerNewSubLogger("DATA")
	StrategyMgr = registerNewSubLogger("STRATEGY")
	Report = registerNewSubLogger("REPORT")
	Store = registerNewSubLogger("STORE")
	ConfigMgr = registerNewSubLogger("CONFIG")
}
