// Package logging configures the standard logger used across the application.
package logging

import (
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrlokans/readinglist/internal/config"
)

// Setup points the standard logger at stderr and, when cfg.File is set,
// also at a size-rotated log file. The returned closer flushes the file.
func Setup(cfg config.Log) io.Closer {
	if strings.TrimSpace(cfg.File) == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil)
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotating))
	return rotating
}
