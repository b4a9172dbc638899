package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// Init replaces the process logger. Entries are JSON encoded on stderr and,
// when filename is set, appended to that file as well.
func Init(filename string, verbose bool) error {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}

	if filename != "" {
		file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		sinks = append(sinks, zapcore.AddSync(file))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	logger = zap.New(core)
	return nil
}

// L returns the process logger for structured fields.
func L() *zap.Logger {
	return logger
}

func Log(format string, v ...interface{}) {
	logger.Sugar().Infof(format, v...)
}

func Debug(format string, v ...interface{}) {
	logger.Sugar().Debugf(format, v...)
}

func Error(format string, v ...interface{}) {
	logger.Sugar().Errorf(format, v...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = logger.Sync()
}
