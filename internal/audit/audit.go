// Package audit writes the transaction log for purchases, sales, transfers
// and exchanges.
package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"serverrewards/pkg/uid"
)

// Categories mirror the log files players' server admins are used to.
const (
	CategoryPurchases = "Purchases"
	CategorySales     = "Sales"
	CategoryTransfers = "Transfers"
	CategoryExchange  = "Exchange"
	CategoryAPI       = "API"
)

// Logger appends JSON lines to the audit log. A nil *Logger discards.
type Logger struct {
	log     *logrus.Logger
	enabled bool
	closer  io.Closer
}

// New writes to w. When enabled is false only Exchange entries are kept.
func New(w io.Writer, enabled bool) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return &Logger{log: l, enabled: enabled}
}

// Open appends to the file at path, creating parent directories.
func Open(path string, enabled bool) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	l := New(f, enabled)
	l.closer = f
	return l, nil
}

// Record writes one entry and returns its transaction ID.
func (l *Logger) Record(category, message string, fields logrus.Fields) string {
	if l == nil || (!l.enabled && category != CategoryExchange) {
		return ""
	}
	id := uid.New()
	entry := l.log.WithFields(fields).WithField("category", category).WithField("txn", id)
	entry.Info(message)
	return id
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
