// Package logger configures logrus, optionally mirroring the entries to a rotated file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const hostNameHolder = "{HOSTNAME}"

// Config is the logging part of the application configuration.
type Config struct {
	Level      string `yaml:"level" toml:"level"`
	Formatter  string `yaml:"formatter" toml:"formatter"`
	Dir        string `yaml:"dir" toml:"dir"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" toml:"max_size_mb"`
	MaxAgeDays int    `yaml:"maxAgeDays" toml:"max_age_days"`
	MaxBackups int    `yaml:"maxBackups" toml:"max_backups"`
	Compress   bool   `yaml:"compress" toml:"compress"`
}

// InitStandard configures the standard logrus logger.
func InitStandard(conf Config) error {
	return Init(log.StandardLogger(), conf)
}

// Init sets the level and the formatter of the logger. When the file is configured,
// every entry is also written to the file rotated by lumberjack.
func Init(logger *log.Logger, conf Config) error {
	level := log.InfoLevel
	if conf.Level != "" {
		var err error
		level, err = log.ParseLevel(conf.Level)
		if err != nil {
			return fmt.Errorf("logger: parse level: %w", err)
		}
	}
	logger.SetLevel(level)

	if strings.EqualFold(conf.Formatter, "json") {
		logger.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
	}

	if conf.File == "" {
		return nil
	}
	w, err := fileWriter(conf)
	if err != nil {
		return err
	}
	logger.AddHook(lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: w,
		log.FatalLevel: w,
		log.ErrorLevel: w,
		log.WarnLevel:  w,
		log.InfoLevel:  w,
		log.DebugLevel: w,
		log.TraceLevel: w,
	}, logger.Formatter))
	return nil
}

func fileWriter(conf Config) (io.Writer, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("logger: get hostname: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(conf.Dir, strings.ReplaceAll(conf.File, hostNameHolder, hostname)),
		MaxSize:    conf.MaxSizeMB,
		MaxAge:     conf.MaxAgeDays,
		MaxBackups: conf.MaxBackups,
		LocalTime:  true,
		Compress:   conf.Compress,
	}, nil
}
