// Package log provides the module's global structured logger, a thin
// wrapper around zerolog tuned for console output and for panic-on-error
// hooks in tests.
package log

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"
)

var (
	log   zerolog.Logger
	logMu sync.RWMutex
)

func init() {
	// Allow overriding the default level via $DUEL_LOG_LEVEL so tests and
	// CLI invocations can raise verbosity without code changes.
	Init(cmp.Or(os.Getenv("DUEL_LOG_LEVEL"), "error"), "stderr", nil)
}

// Logger provides access to the global logger.
func Logger() *zerolog.Logger {
	logger := getLogger()
	return &logger
}

func getLogger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}

func setLogger(logger zerolog.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	log = logger
}

// panicOnErrorHook panics when an Error-level (or higher) log is emitted.
// Useful for integration tests that want silent errors to fail hard.
type panicOnErrorHook struct {
	TestName string
	Delay    time.Duration
	Handler  func(string)
	once     sync.Once
}

func (h *panicOnErrorHook) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if level < zerolog.ErrorLevel {
		return
	}
	panicMsg := fmt.Sprintf("error log during test %s: %s", h.TestName, msg)
	h.once.Do(func() {
		delay := h.Delay
		if delay <= 0 {
			delay = time.Second
		}
		handler := h.Handler
		if handler == nil {
			handler = func(message string) { panic(message) }
		}
		time.AfterFunc(delay, func() { handler(panicMsg) })
	})
}

// EnablePanicOnError installs a hook on the current logger that panics on
// Error-level logs, returning the previous logger so it can be restored.
func EnablePanicOnError(testName string) zerolog.Logger {
	return EnablePanicOnErrorWithHandler(testName, time.Second, nil)
}

// EnablePanicOnErrorWithHandler installs a hook that invokes handler (or
// panics, if handler is nil) after delay when an Error-level log occurs.
func EnablePanicOnErrorWithHandler(testName string, delay time.Duration, handler func(string)) zerolog.Logger {
	previous := getLogger()
	setLogger(previous.Hook(&panicOnErrorHook{TestName: testName, Delay: delay, Handler: handler}))
	return previous
}

// RestoreLogger restores a previously saved logger, removing any hooks.
func RestoreLogger(previous zerolog.Logger) {
	setLogger(previous)
}

type errorLevelWriter struct {
	io.Writer
}

var _ zerolog.LevelWriter = (*errorLevelWriter)(nil)

func (*errorLevelWriter) Write(_ []byte) (int, error) {
	panic("should be calling WriteLevel")
}

func (w *errorLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.Writer.Write(p)
}

// Init (re)configures the global logger.
func Init(level, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		out = f
	}
	out = zerolog.ConsoleWriter{Out: out, TimeFormat: RFC3339Milli}

	outputs := []io.Writer{out}
	if errorOutput != nil {
		outputs = append(outputs, &errorLevelWriter{zerolog.ConsoleWriter{
			Out:        errorOutput,
			TimeFormat: RFC3339Milli,
			NoColor:    true,
		}})
	}
	if len(outputs) > 1 {
		out = zerolog.MultiLevelWriter(outputs...)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	logger := zerolog.New(out).With().Timestamp().Logger()
	logger = logger.With().Caller().Logger()
	zerolog.CallerSkipFrameCount = 3
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		return fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(file)), path.Base(file), line)
	}

	switch level {
	case LogLevelDebug:
		logger = logger.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		logger = logger.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		logger = logger.Level(zerolog.WarnLevel)
	case LogLevelError:
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", level))
	}

	setLogger(logger)
	logger.Info().Msgf("logger ready at level %s, output %s", level, output)
}

// Level returns the current log level.
func Level() string {
	switch lvl := getLogger().GetLevel(); lvl {
	case zerolog.DebugLevel:
		return LogLevelDebug
	case zerolog.InfoLevel:
		return LogLevelInfo
	case zerolog.WarnLevel:
		return LogLevelWarn
	default:
		return LogLevelError
	}
}

func Debug(args ...any) { getLogger().Debug().Msg(fmt.Sprint(args...)) }
func Info(args ...any)  { getLogger().Info().Msg(fmt.Sprint(args...)) }
func Warn(args ...any)  { getLogger().Warn().Msg(fmt.Sprint(args...)) }
func Error(args ...any) { getLogger().Error().Msg(fmt.Sprint(args...)) }

// Fatal logs at fatal level, which terminates the process, including a stack trace.
func Fatal(args ...any) {
	getLogger().Fatal().Msg(fmt.Sprint(args...) + "\n" + string(debug.Stack()))
	panic("unreachable")
}

func Debugf(template string, args ...any) { Logger().Debug().Msgf(template, args...) }
func Infof(template string, args ...any)  { Logger().Info().Msgf(template, args...) }
func Warnf(template string, args ...any)  { Logger().Warn().Msgf(template, args...) }
func Errorf(template string, args ...any) { Logger().Error().Msgf(template, args...) }

// Debugw logs a debug message with key-value pairs.
func Debugw(msg string, keyvalues ...any) { Logger().Debug().Fields(keyvalues).Msg(msg) }

// Infow logs an info message with key-value pairs.
func Infow(msg string, keyvalues ...any) { Logger().Info().Fields(keyvalues).Msg(msg) }

// Warnw logs a warning message with key-value pairs.
func Warnw(msg string, keyvalues ...any) { Logger().Warn().Fields(keyvalues).Msg(msg) }

// Errorw logs an error with its message.
func Errorw(err error, msg string) { Logger().Error().Err(err).Msg(msg) }
