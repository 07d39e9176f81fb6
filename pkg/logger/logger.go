package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logrus instance. Components derive their own
// entries via WithComponent rather than logging through the root directly.
var Logger = logrus.StandardLogger()

// Config controls level, destination and file rotation.
type Config struct {
	Level      string
	OutputFile string // empty means console only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Init configures the global logger. Safe to call once at startup.
func Init(cfg Config) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "06-01-02 15:04:05",
	})

	if cfg.OutputFile == "" {
		Logger.SetOutput(os.Stdout)
		return nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.OutputFile,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	Logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return nil
}

// WithComponent returns a component-scoped entry.
func WithComponent(name string) *logrus.Entry {
	return Logger.WithField("component", name)
}
