// Package log provides structured logging for WattWise on top of zerolog.
//
// Components obtain a named Logger and log with alternating key/value pairs:
//
//	logger := log.GetLoggerWithName("training")
//	logger.Info("Training started", log.SamplesKey, 7008, log.FeaturesKey, 5)
//
// The process-wide output and level are configured once at startup with
// SetupLogger or SetOutput. Packages that need an isolated logger (tests,
// embedded use) can create their own LoggerProvider with NewZerologProvider.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Common field keys.
const (
	ModelNameKey  = "model"
	ComponentKey  = "component"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "samples"
	FeaturesKey   = "features"
	DurationMsKey = "duration_ms"
	PredsKey      = "predictions"
	IterationKey  = "iteration"
	CityKey       = "city"
	RunIDKey      = "run_id"
	PathKey       = "path"
	ErrorKey      = "error"
)

// Common field values.
const (
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationGenerate = "generate"
	OperationSave     = "save"
	OperationLoad     = "load"
	OperationIngest   = "ingest"

	PhaseTraining   = "training"
	PhaseInference  = "inference"
	PhaseEvaluation = "evaluation"
)

// Logger is the structured logger used throughout the module.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// LoggerProvider hands out named loggers sharing one sink.
type LoggerProvider interface {
	GetLoggerWithName(name string) Logger
}

// ZerologProvider is a LoggerProvider backed by a zerolog.Logger.
type ZerologProvider struct {
	base zerolog.Logger
}

// NewZerologProvider creates a provider writing console-formatted output to
// stderr at the given level.
func NewZerologProvider(level zerolog.Level) *ZerologProvider {
	return NewZerologProviderWithWriter(consoleWriter(os.Stderr), level)
}

// NewZerologProviderWithWriter creates a provider writing to w at the given level.
func NewZerologProviderWithWriter(w io.Writer, level zerolog.Level) *ZerologProvider {
	return &ZerologProvider{
		base: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// GetLoggerWithName returns a logger tagged with the given component name.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: p.base.With().Str("name", name).Logger()}
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...interface{}) {
	emit(l.zl.Error(), msg, fields)
}

func (l *zerologLogger) With(fields ...interface{}) Logger {
	return &zerologLogger{zl: l.zl.With().Fields(normalize(fields)).Logger()}
}

func emit(e *zerolog.Event, msg string, fields []interface{}) {
	if e == nil {
		return
	}
	e.Fields(normalize(fields)).Msg(msg)
}

// normalize turns error values into strings under their key and pads a
// trailing key without a value.
func normalize(fields []interface{}) []interface{} {
	if len(fields)%2 != 0 {
		fields = append(fields, "(MISSING)")
	}
	out := make([]interface{}, len(fields))
	for i, f := range fields {
		if err, ok := f.(error); ok && i%2 == 1 {
			out[i] = err.Error()
			continue
		}
		out[i] = f
	}
	return out
}

var (
	mu       sync.RWMutex
	provider LoggerProvider = NewZerologProvider(zerolog.InfoLevel)
	global                  = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
)

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

// ToLogLevel parses a level name, defaulting to info.
func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetupLogger configures console output on stderr at the given level.
func SetupLogger(level string) {
	SetOutput(consoleWriter(os.Stderr), level)
}

// SetOutput sends all subsequently created loggers to w at the given level.
// Loggers obtained earlier keep their previous sink.
func SetOutput(w io.Writer, level string) {
	lvl := ToLogLevel(level)
	mu.Lock()
	defer mu.Unlock()
	provider = NewZerologProviderWithWriter(w, lvl)
	global = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Setup configures the global logger from a level and format ("console" or "json").
func Setup(level, format string) {
	if strings.EqualFold(format, "json") {
		SetOutput(os.Stderr, level)
		return
	}
	SetupLogger(level)
}

// SetProvider replaces the global provider.
func SetProvider(p LoggerProvider) {
	mu.Lock()
	defer mu.Unlock()
	provider = p
}

// GetLoggerWithName returns a named logger from the global provider.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// GetLogger returns the raw global zerolog logger for event-style logging.
func GetLogger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := global
	return &l
}

// LogError logs err at error level with its full chain.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	GetLogger().Error().Err(err).Msg(msg)
}
