package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/crytic/stylus-replay/logging/colors"
	"github.com/crytic/stylus-replay/utils"
	"github.com/rs/zerolog"
)

// GlobalLogger is disabled until a command configures it. Every package derives its own sub-logger from it so that
// log lines can be filtered by the "module" key.
var GlobalLogger = NewLogger(zerolog.Disabled, false)

// Logger logs events to any number of structured writers and, separately, to a colorized console stream.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// multiLogger emits events to every registered writer, in structured or unstructured format.
	multiLogger zerolog.Logger

	// consoleLogger emits unstructured, colorized events to the console. It is kept apart from multiLogger so that
	// console formatting never leaks into log files.
	consoleLogger zerolog.Logger

	// writers is the list of io.Writer objects the multiLogger fans out to.
	writers []io.Writer
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// ConsoleOutput is where console logs go. Logs are kept off stdout so that traces written to stdout stay pipeable.
var ConsoleOutput io.Writer = os.Stderr

// NewLogger creates a Logger with the given level. Console output is optional and any number of additional writers
// may be provided for structured output.
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	// Disabled base loggers avoid nil checks further down
	baseMultiLogger := zerolog.New(io.Discard).Level(zerolog.Disabled)
	baseConsoleLogger := zerolog.New(io.Discard).Level(zerolog.Disabled)

	if len(writers) > 0 {
		baseMultiLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	}

	if consoleEnabled {
		consoleWriter := setupDefaultFormatting(zerolog.ConsoleWriter{Out: ConsoleOutput}, level)
		baseConsoleLogger = zerolog.New(consoleWriter).Level(level)
	}

	return &Logger{
		level:         level,
		multiLogger:   baseMultiLogger,
		consoleLogger: baseConsoleLogger,
		writers:       writers,
	}
}

// NewSubLogger creates a Logger carrying an additional key-value pair on every event. Each package keeps its own
// sub-logger so that log output can be grepped by service.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	return &Logger{
		level:         l.level,
		multiLogger:   l.multiLogger.With().Str(key, value).Logger(),
		consoleLogger: l.consoleLogger.With().Str(key, value).Logger(),
		writers:       l.writers,
	}
}

// AddWriter adds a writer to the list of channels where log output will be sent. Adding the same writer twice is a
// no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat) {
	for _, w := range l.writers {
		if writer == w {
			return
		}
	}

	// Unstructured output is rendered through a console writer without ANSI coloring
	if format == UNSTRUCTURED {
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: true}
	}

	l.writers = append(l.writers, writer)
	l.multiLogger = zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp().Logger()
}

// RemoveWriter removes a writer from the list of writers. Removing an unknown writer is a no-op.
func (l *Logger) RemoveWriter(writer io.Writer) {
	for i, w := range l.writers {
		if writer == w {
			l.writers = append(l.writers[:i], l.writers[i+1:]...)
			break
		}
	}

	if len(l.writers) == 0 {
		l.multiLogger = zerolog.New(io.Discard).Level(zerolog.Disabled)
		return
	}
	l.multiLogger = zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp().Logger()
}

// Writers returns the writers currently registered with the Logger
func (l *Logger) Writers() []io.Writer {
	return l.writers
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.multiLogger = l.multiLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

// Trace logs a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug logs a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info logs an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn logs a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error logs an error event
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic logs a panic event and then panics
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

// log builds the console and structured messages for the provided arguments and sends them off at the given level.
func (l *Logger) log(level zerolog.Level, args ...any) {
	consoleMsg, multiMsg, err, info := buildMsgs(args...)

	consoleLog := l.consoleLogger.WithLevel(level)
	multiLog := l.multiLogger.WithLevel(level)

	// Stack traces are attached at debug verbosity, and always for panics
	chainError(consoleLog, multiLog, err, level == zerolog.PanicLevel || l.level <= zerolog.DebugLevel)
	chainStructuredLogInfoAndMsgs(consoleLog, multiLog, info, consoleMsg, multiMsg)

	if level == zerolog.PanicLevel {
		panic(multiMsg)
	}
}

// buildMsgs takes a variadic list of arguments and returns a colorized message for the console, a plain message for
// structured output and, optionally, an error and a StructuredLogInfo. A colors.ColorFunc argument switches the color
// applied to every argument that follows it.
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	if len(args) == 0 {
		return "", "", nil, nil
	}

	colorCtx := colors.Reset
	consoleOutput := make([]string, 0, len(args))
	fileOutput := make([]string, 0, len(args))
	var info StructuredLogInfo
	var err error

	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			colorCtx = t
		case StructuredLogInfo:
			// Only one structured log info is kept per message
			info = t
		case error:
			// Only one error is kept per message
			err = t
		case *LogBuffer:
			consoleMsg, fileMsg, _, _ := buildMsgs(t.Args()...)
			consoleOutput = append(consoleOutput, consoleMsg)
			fileOutput = append(fileOutput, fileMsg)
		default:
			consoleOutput = append(consoleOutput, colorCtx(t))
			fileOutput = append(fileOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(consoleOutput, ""), strings.Join(fileOutput, ""), err, info
}

// chainError attaches err to both events. If debug is true, a stack trace is attached as well.
func chainError(consoleLog *zerolog.Event, multiLog *zerolog.Event, err error, debug bool) {
	// Err is safe to call with a nil error
	consoleLog.Err(err)
	multiLog.Err(err)

	if debug && err != nil {
		consoleLog.Stack()
		multiLog.Stack()
	}
}

// chainStructuredLogInfoAndMsgs attaches info to both events and sends them with their respective messages.
func chainStructuredLogInfoAndMsgs(consoleLog *zerolog.Event, multiLog *zerolog.Event, info StructuredLogInfo, consoleMsg string, multiMsg string) {
	if info != nil {
		consoleLog.Any("info", info)
		multiLog.Any("info", info)
	}

	// The multi logger is sent last so that every channel receives a panic log
	defer multiLog.Msg(multiMsg)
	consoleLog.Msg(consoleMsg)
}

// OpenLogFile creates "log-<unix timestamp>.log" inside logDirectory so it can be registered with AddWriter.
func OpenLogFile(logDirectory string) (*os.File, error) {
	filename := fmt.Sprintf("log-%d.log", time.Now().Unix())
	return utils.CreateFile(logDirectory, filename)
}

// setupDefaultFormatting applies the console formatting used across the tool: no timestamps and colored level glyphs.
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	writer.FormatTimestamp = func(i interface{}) string {
		return ""
	}

	writer.FormatLevel = func(i any) string {
		levelStr, _ := i.(string)
		parsed, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return levelStr
		}

		switch parsed {
		case zerolog.TraceLevel:
			return colors.CyanBold(zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return colors.BlueBold(zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return colors.GreenBold(colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return colors.YellowBold(zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return colors.RedBold(zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return colors.RedBold(zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return colors.RedBold(zerolog.LevelPanicValue)
		default:
			return levelStr
		}
	}

	// Above debug level the module and session fields are noise on the console
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module", "session"}
	}

	return writer
}
