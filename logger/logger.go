package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger = zap.NewNop()
	once sync.Once
)

// Init builds the process wide logger. Only the first call has an effect.
func Init(level string, development bool) error {
	var err error
	once.Do(func() {
		var cfg zap.Config
		if development {
			cfg = zap.NewDevelopmentConfig()
		} else {
			cfg = zap.NewProductionConfig()
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}
		lvl := zapcore.InfoLevel
		if level != "" {
			if err = lvl.UnmarshalText([]byte(level)); err != nil {
				return
			}
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		var l *zap.Logger
		l, err = cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			return
		}
		log = l
	})
	return err
}

func L() *zap.Logger {
	return log
}

func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

func Sync() error {
	return log.Sync()
}
