package linker

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/native-link/backend"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the linker package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the linker package's logger and, through it, the
// backend package's.
// This must be called before any linker operations.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
	backend.SetLogger(l.Named("backend"))
}
