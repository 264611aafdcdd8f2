package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. level follows LOG_LEVEL names; when file is
// set, output is duplicated into a rotating log file.
func New(level, file string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})

	var out io.Writer = os.Stdout
	if file != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	l.SetOutput(out)
	l.SetLevel(ParseLevel(level))
	return l
}

func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
