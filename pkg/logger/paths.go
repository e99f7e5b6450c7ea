// pkg/logger/paths.go

package logger

import (
	"os"
	"path/filepath"
	"runtime"

	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// PlatformLogPaths returns candidate log file paths in order of priority.
func PlatformLogPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			filepath.Join(os.Getenv("HOME"), ".local", "state", "hermes", "hermes.log"),
			"/tmp/hermes/hermes.log",
		}
	case "linux":
		return []string{
			"/var/log/hermes/hermes.log",
			filepath.Join(os.Getenv("HOME"), ".local", "state", "hermes", "hermes.log"),
			"/tmp/hermes/hermes.log",
		}
	default:
		return []string{filepath.Join(os.TempDir(), "hermes", "hermes.log")}
	}
}

// FindWritableLogPath returns the first candidate path whose directory can be
// created and whose file can be opened for append.
func FindWritableLogPath() (string, error) {
	for _, path := range PlatformLogPaths() {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			continue
		}
		f.Close()
		return path, nil
	}
	return "", cerr.New("no writable log path available")
}

// GetLogFileWriter opens the log file for appending and wraps it as a zap sync target.
func GetLogFileWriter(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, cerr.Wrap(err, "open log file")
	}
	return zapcore.AddSync(f), nil
}
