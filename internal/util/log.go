package util

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil { lvl = zerolog.InfoLevel }
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl)
}

// NewFileLogger mirrors NewLogger but tees output into the given file so the
// validation and trade reports survive the run. Falls back to stdout-only when
// the file cannot be opened.
func NewFileLogger(level, path string) (zerolog.Logger, io.Closer) {
	base := NewLogger(level)
	if path == "" {
		return base, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return base, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return base, nil
	}
	writer := zerolog.MultiLevelWriter(os.Stdout, file)
	return zerolog.New(writer).With().Timestamp().Logger().Level(base.GetLevel()), file
}
