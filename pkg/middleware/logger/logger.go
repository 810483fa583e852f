package logger

import (
	"context"
	"os"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ServiceEnv struct {
	Platform string
	Service  string
	Env      string
}

type LogConfig struct {
	Path       string
	LogLevel   string
	ServiceEnv ServiceEnv
}

var (
	mu     sync.RWMutex
	log    = otelzap.New(zap.NewNop()).Sugar()
	writer *lumberjack.Logger
)

func Init(conf *LogConfig) {
	level, err := zapcore.ParseLevel(conf.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encConf := zap.NewProductionEncoderConfig()
	encConf.EncodeTime = zapcore.ISO8601TimeEncoder
	encConf.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encConf), zapcore.Lock(os.Stdout), level),
	}

	var w *lumberjack.Logger
	if conf.Path != "" {
		w = &lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    100, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encConf), zapcore.AddSync(w), level))
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2)).With(
		zap.String("platform", conf.ServiceEnv.Platform),
		zap.String("service", conf.ServiceEnv.Service),
		zap.String("env", conf.ServiceEnv.Env),
	)

	mu.Lock()
	defer mu.Unlock()
	log = otelzap.New(base, otelzap.WithMinLevel(level)).Sugar()
	writer = w
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = log.Sync()
	if writer != nil {
		_ = writer.Close()
	}
}

func ctxLogger(ctx context.Context) otelzap.SugaredLoggerWithCtx {
	mu.RLock()
	defer mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.Ctx(ctx)
}

func Debugf(ctx context.Context, format string, args ...any) {
	ctxLogger(ctx).Debugf(format, args...)
}

func Infof(ctx context.Context, format string, args ...any) {
	ctxLogger(ctx).Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	ctxLogger(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	ctxLogger(ctx).Errorf(format, args...)
}

func Fatalf(ctx context.Context, format string, args ...any) {
	ctxLogger(ctx).Fatalf(format, args...)
}
