package logging

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string `koanf:"level" yaml:"level"`
	JSON  bool   `koanf:"json" yaml:"json"`
}

var def atomic.Value

func init() {
	def.Store(build(zapcore.InfoLevel, false))
}

// Configure replaces the process-wide logger. Unknown levels fall back to info.
func Configure(opts Options) {
	def.Store(build(parseLevel(opts.Level), opts.JSON))
}

func build(lvl zapcore.Level, json bool) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if json {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(lvl))
	return zap.New(core)
}

func parseLevel(s string) zapcore.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func L() *zap.Logger {
	l, _ := def.Load().(*zap.Logger)
	return l
}

// Set installs an already built logger, e.g. zap.NewNop() in tests.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	def.Store(l)
}

func Sync() {
	_ = L().Sync()
}

func InitFromEnv() {
	lvl := os.Getenv("TITANIC_LOG_LEVEL")
	jsonStr := os.Getenv("TITANIC_LOG_JSON")
	json := false
	if b, err := strconv.ParseBool(strings.TrimSpace(jsonStr)); err == nil {
		json = b
	}
	Configure(Options{Level: lvl, JSON: json})
}
