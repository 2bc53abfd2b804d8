package server

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"crystalrun/config"
)

// Log 是全局可用的 SugaredLogger，未初始化时为 Nop
var Log = zap.NewNop().Sugar()

// InitLogger 按配置初始化 zap：文件滚动（lumberjack），可选同时输出到 stderr
func InitLogger(cfg config.LogConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	enc, err := newEncoder(cfg.Format)
	if err != nil {
		return err
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,  // MB
		MaxAge:     cfg.MaxAgeDays, // days
		MaxBackups: cfg.MaxBackups,
	}), level)}
	if cfg.Stderr {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stderr), level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Sugar()
	return nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.StacktraceKey = "stack"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	switch format {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg), nil
	case "json":
		return zapcore.NewJSONEncoder(encCfg), nil
	default:
		return nil, fmt.Errorf("log format %q: want console or json", format)
	}
}

// SyncLogger 清理和同步缓冲
func SyncLogger() {
	_ = Log.Sync()
}
