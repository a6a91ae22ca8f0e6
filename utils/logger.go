package utils

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var appLogger = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// InitLogger настраивает логгер приложения: JSON в stdout и в файл с ротацией
func InitLogger(dir, level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "app.log"),
		MaxSize:    50, // мегабайт
		MaxBackups: 5,
		MaxAge:     30, // дней
		Compress:   true,
	}

	appLogger.SetLevel(lvl)
	appLogger.SetOutput(io.MultiWriter(os.Stdout, rotated))
	appLogger.SetFormatter(&logrus.JSONFormatter{})
}

// Logger возвращает логгер приложения
func Logger() *logrus.Logger {
	return appLogger
}

// LogInfo логирует информационное сообщение
func LogInfo(format string, v ...interface{}) {
	appLogger.Infof(format, v...)
}

// LogError логирует сообщение об ошибке
func LogError(format string, v ...interface{}) {
	appLogger.Errorf(format, v...)
}

// LogDebug логирует отладочное сообщение
func LogDebug(format string, v ...interface{}) {
	appLogger.Debugf(format, v...)
}

// LogOperation логирует результат операции с ее длительностью
func LogOperation(operation string, startTime time.Time, err error) {
	duration := time.Since(startTime)
	entry := appLogger.WithFields(logrus.Fields{
		"operation": operation,
		"duration":  duration.String(),
	})
	if err != nil {
		entry.WithError(err).Error("operation failed")
	} else {
		entry.Info("operation completed")
	}
}
