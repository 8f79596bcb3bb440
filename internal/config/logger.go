package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a new well configured logger.
// Entries are written to stderr and, when log.file is set, to a rotated file.
func NewLogger(konf *koanf.Koanf) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(konf.String("log.level"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid log.level")
	}

	formatter := new(logFormatter)

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(formatter)

	if filename := konf.String("log.file"); filename != "" {
		logger.Hooks.Add(&fileHook{
			rotate: &lumberjack.Logger{
				Filename:   filename,
				MaxSize:    20, // megabytes
				MaxBackups: 2,
				MaxAge:     10, //days
			},
			formatter: formatter,
		})
	}

	return logger, nil
}

// NullLogger returns a logger discarding everything.
func NullLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

////////////////////
//                //
// File hook      //
//                //
////////////////////

type fileHook struct {
	sync.Mutex
	rotate    io.WriteCloser
	formatter logrus.Formatter
}

// Fire writes the formatted entry to the rotated file.
func (hook *fileHook) Fire(entry *logrus.Entry) error {
	hook.Lock()
	defer hook.Unlock()

	// use our formatter instead of entry.String()
	msg, err := hook.formatter.Format(entry)
	if err != nil {
		log.Println("failed to generate string for entry:", err)
		return err
	}

	_, err = hook.rotate.Write(msg)
	return err
}

// Levels returns configured log levels.
func (hook *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

////////////////////
//                //
// Log formatter  //
//                //
////////////////////

type logFormatter struct{}

// Format implements Logrus formatter.
func (f *logFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	fields := ""
	if len(entry.Data) > 0 {
		fs := []string{}
		for k, v := range entry.Data {
			fs = append(fs, fmt.Sprintf("%s=%v", k, v))
		}
		sort.Strings(fs)
		fields = fmt.Sprintf(" (%s)", strings.Join(fs, ", "))
	}

	data := fmt.Sprintf("[%s] %+5s: %s%s\n",
		entry.Time.Format(time.RFC3339),
		strings.ToUpper(entry.Level.String()),
		entry.Message,
		fields,
	)
	return []byte(data), nil
}
