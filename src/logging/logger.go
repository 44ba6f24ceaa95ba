package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents severity.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]LogLevel{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var currentLevel int32 = int32(LevelInfo)

var baseLogger = newBaseLogger(os.Stderr)

func newBaseLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	// level filtering happens in logf; logrus itself passes everything through
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		TimestampFormat:  "2006/01/02 15:04:05.000000",
		DisableColors:    true,
		DisableQuote:     true,
		PadLevelText:     true,
		QuoteEmptyFields: true,
	})
	return l
}

// SetOutput redirects log output (stderr by default).
func SetOutput(w io.Writer) { baseLogger.SetOutput(w) }

// SetLogLevel parses and sets global log level. Unknown names are ignored.
func SetLogLevel(s string) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return
	}
	atomic.StoreInt32(&currentLevel, int32(l))
}

// ValidLevel reports whether s names a known level.
func ValidLevel(s string) bool {
	_, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

func getLevel() LogLevel { return LogLevel(atomic.LoadInt32(&currentLevel)) }

// GetLogLevel returns current global log level.
func GetLogLevel() LogLevel { return getLevel() }

func logf(l LogLevel, format string, args ...interface{}) {
	if getLevel() > l {
		return
	}
	// Only format when there are args; a message that already went through Sprintf may
	// contain literal % characters (e.g. "95.0% of rows").
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	switch l {
	case LevelDebug:
		baseLogger.Debug(msg)
	case LevelWarn:
		baseLogger.Warn(msg)
	case LevelError:
		baseLogger.Error(msg)
	default:
		baseLogger.Info(msg)
	}
}

// Public helpers
func Debugf(format string, a ...interface{}) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, format, a...) }

// Timing helper for phases.
func TimeTrack(start time.Time, label string) {
	dur := time.Since(start)
	Debugf("%s took %s", label, dur)
}
