package helper

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"health-rag/internal/config"
)

// SetupLogger configures the global zerolog logger with a console writer and,
// when cfg.Dir is set, a daily file under that directory. The returned closer
// releases the log file.
func SetupLogger(cfg config.LogConfig) (io.Closer, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if cfg.Dir == "" {
		log.Logger = log.Output(console).With().Caller().Logger()
		return io.NopCloser(nil), nil
	}

	if err := CreateFolder(cfg.Dir); err != nil {
		return nil, err
	}
	name := filepath.Join(cfg.Dir, time.Now().Format("2006-01-02")+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, f)).With().Timestamp().Caller().Logger()
	return f, nil
}
