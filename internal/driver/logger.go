package driver

import (
	"sync"

	"go.uber.org/zap"

	"github.com/alexhholmes/structlayout/internal/analyzer"
)

var (
	logger   *zap.Logger
	loggerMu sync.RWMutex
)

// Logger returns the driver's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// SetLogger replaces the logger of the driver and of the analysis it runs.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()

	if l != nil {
		l = l.Named("analyzer")
	}
	analyzer.SetLogger(l)
}
