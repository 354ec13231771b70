// Package logtest provides a Logger for tests, routed through the test
// runner so log lines attach to the failing test.
package logtest

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"macromaps/internal/common/logger"
)

func NewLogger(t testing.TB) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}
