// Package pkg holds process-wide helpers shared by the command and tests.
package pkg

import (
	"os"
	"path/filepath"

	"github.com/powerman/structlog"
)

func InitLog() {
	structlog.DefaultLogger.
		SetPrefixKeys(
			structlog.KeyApp, structlog.KeyPID, structlog.KeyLevel, structlog.KeyUnit, structlog.KeyTime,
		).
		SetDefaultKeyvals(
			structlog.KeyApp, filepath.Base(os.Args[0]),
			structlog.KeySource, structlog.Auto,
		).
		SetSuffixKeys(
			structlog.KeyStack,
		).
		SetSuffixKeys(structlog.KeySource).
		SetKeysFormat(map[string]string{
			structlog.KeyTime:   " %[2]s",
			structlog.KeySource: " %6[2]s",
			structlog.KeyUnit:   " %6[2]s",
		})
}

// SetLogLevel accepts the structlog level names (err, wrn, inf, dbg).
func SetLogLevel(level string) {
	if level == "" {
		return
	}
	structlog.DefaultLogger.SetLogLevel(structlog.ParseLevel(level))
}
