package logger

import (
	"os"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	emailRegex  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	tokenRegex  = regexp.MustCompile(`eyJ[^\s]+`)
	userIDRegex = regexp.MustCompile(`\buser_id\s*=\s*\d+\b`)
)

// base is shared by every Logger so that SetLevel applies process-wide.
var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg: "message",
		},
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Logger is a centralized structured logger
type Logger struct {
	out *logrus.Logger
}

// New creates a new Logger
func New() *Logger {
	return &Logger{out: base}
}

// SetLevel changes the minimum level of all loggers ("debug", "info", "error", ...).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	base.SetLevel(lvl)
	return nil
}

// Anonymize replaces sensitive information in logs (emails, tokens, IDs)
func Anonymize(s string) string {
	s = emailRegex.ReplaceAllString(s, "[REDACTED_EMAIL]")
	s = tokenRegex.ReplaceAllString(s, "[REDACTED_TOKEN]")
	s = userIDRegex.ReplaceAllString(s, "user_id=[USER_ID]")
	return s
}

func (l *Logger) entry(module string, err error) *logrus.Entry {
	e := l.out.WithField("module", module)
	if err != nil {
		e = e.WithField(logrus.ErrorKey, Anonymize(err.Error()))
	}
	return e
}

// --- Convenient methods ---
func (l *Logger) Info(module, msg string) {
	l.entry(module, nil).Info(Anonymize(msg))
}

func (l *Logger) Debug(module, msg string) {
	l.entry(module, nil).Debug(Anonymize(msg))
}

func (l *Logger) Error(module, msg string, err error) {
	l.entry(module, err).Error(Anonymize(msg))
}
