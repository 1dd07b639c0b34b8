// Package logging configures the process-wide zap logger.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger writing to both stderr and a rotated log file.
// An empty file path disables the file sink.
func New(level, file string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := parseLevel(level)

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			lvl,
		),
	}

	if file != "" {
		rotated := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(rotated),
			lvl,
		))
	}

	return zap.New(zapcore.NewTee(cores...))
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
