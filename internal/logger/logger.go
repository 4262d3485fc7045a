package logger

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/r2dtools/certman/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Error(message string, args ...any)
	Warning(message string, args ...any)
	Info(message string, args ...any)
	Debug(message string, args ...any)
}

type logger struct {
	zapLogger *zap.SugaredLogger
}

func (l *logger) Error(message string, args ...interface{}) {
	l.zapLogger.Errorf(message, args...)
}

func (l *logger) Warning(message string, args ...interface{}) {
	l.zapLogger.Warnf(message, args...)
}

func (l *logger) Info(message string, args ...interface{}) {
	l.zapLogger.Infof(message, args...)
}

func (l *logger) Debug(message string, args ...interface{}) {
	l.zapLogger.Debugf(message, args...)
}

// NewLogger writes human readable debug output to stderr in debug mode and JSON
// records otherwise, to the configured log file or stderr.
func NewLogger(config *config.Config) (Logger, error) {
	var loggerConfig zap.Config
	outputPaths := []string{}

	if config.LogFile != "" {
		logDir := path.Dir(config.LogFile)

		if _, err := os.Stat(logDir); os.IsNotExist(err) {
			err := os.MkdirAll(logDir, 0755)

			if err != nil {
				return nil, err
			}
		}

		outputPaths = append(outputPaths, config.LogFile)
	} else {
		outputPaths = append(outputPaths, "stderr")
	}

	if config.Debug {
		loggerConfig = zap.NewDevelopmentConfig()
	} else {
		loggerConfig = zap.NewProductionConfig()
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	loggerConfig.OutputPaths = outputPaths
	loggerConfig.ErrorOutputPaths = []string{"stderr"}
	loggerConfig.EncoderConfig.TimeKey = "timestamp"
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)

	zLogger, err := loggerConfig.Build()

	if err != nil {
		return nil, err
	}

	return &logger{zapLogger: zLogger.Sugar()}, nil
}

type NilLogger struct{}

func (l *NilLogger) Error(message string, args ...any) {
}

func (l *NilLogger) Warning(message string, args ...any) {
}

func (l *NilLogger) Info(message string, args ...any) {
}

func (l *NilLogger) Debug(message string, args ...any) {
}

type TestLogger struct {
	T *testing.T
}

func (l *TestLogger) Error(message string, args ...any) {
	l.T.Logf(message, args...)
}

func (l *TestLogger) Warning(message string, args ...any) {
	l.T.Logf(message, args...)
}

func (l *TestLogger) Info(message string, args ...any) {
	l.T.Logf(message, args...)
}

func (l *TestLogger) Debug(message string, args ...any) {
	l.T.Logf(message, args...)
}
