package utils

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig describes where and how verbosely the commands log.
type LogConfig struct {
	Level   string // logrus level name, defaults to info
	File    string // optional rotated log file
	NoColor bool
	Caller  bool
	Output  io.Writer // defaults to os.Stderr
}

// NewLogger builds a logrus logger with the nested formatter, writing to the
// configured output and, when File is set, to a size rotated log file.
func NewLogger(cfg LogConfig) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		lvl, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = lvl
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        cfg.NoColor,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
		},
	})
	logger.SetReportCaller(cfg.Caller)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	writers := []io.Writer{out}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}
	logger.SetOutput(io.MultiWriter(writers...))

	return logger, nil
}
