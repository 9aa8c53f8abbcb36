package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapConfig controls the zap backend created by NewZapLogger.
type ZapConfig struct {
	Level string // "debug", "info", "warn", "error"
	Tag   string // system logger tag, e.g. "hsu-sentinel"
}

// NewZapLogger builds a Logger backed by zap. Every line goes to stdout;
// on platforms with a system logger the same line is also delivered there
// under the configured tag. Syslog setup failure is not fatal: the tool is
// run by a scheduler that captures stdout anyway.
func NewZapLogger(config ZapConfig) (Logger, error) {
	level := zapcore.InfoLevel
	switch config.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}
	if syslogSink := newSyslogSink(config.Tag); syslogSink != nil {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(syslogSink), level))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...))
	sugar := zapLogger.Sugar()

	return NewLogger("", LogFuncs{
		Debugf: sugar.Debugf,
		Infof:  sugar.Infof,
		Warnf:  sugar.Warnf,
		Errorf: sugar.Errorf,
	}), nil
}
