package wasm

import (
	"sync"

	"go.uber.org/zap"
)

var (
	pkgLogger  *zap.Logger
	loggerOnce sync.Once
)

// isDebugMode gates the per-opcode execution trace. It is a build-time
// switch: tracing every instruction is far too hot for a runtime flag on
// the dispatch path.
var isDebugMode = false

// SetLogger installs a logger for the engine. A no-op logger is used until
// one is set. Call before any execution starts; the engine itself is
// single threaded.
func SetLogger(l *zap.Logger) {
	pkgLogger = l
}

func logger() *zap.Logger {
	loggerOnce.Do(func() {
		if pkgLogger == nil {
			pkgLogger = zap.NewNop()
		}
	})
	return pkgLogger
}
