package utils

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

type LoggerConfig struct {
	// Format is "text" or "json".
	Format string
	Output io.Writer
	// EnableColors colours the prefix on terminals.
	EnableColors bool
}

// InitLogger builds the application logger.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[Academy] "

	var logger *log.Logger
	if cfg.Format == "json" {
		logger = log.New(&jsonLineWriter{out: cfg.Output}, prefix, 0)
	} else {
		if cfg.EnableColors {
			prefix = "\033[36m" + prefix + "\033[0m"
		}
		logger = log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
	}

	return logger
}

// ComponentLogger derives a logger that tags lines with a component name, e.g. "[PROGRESS-AUDIT]".
func ComponentLogger(base *log.Logger, component string) *log.Logger {
	if base == nil {
		base = InitLogger()
	}
	return log.New(base.Writer(), base.Prefix()+"["+component+"] ", base.Flags())
}

type logEntry struct {
	Time      string `json:"time"`
	Service   string `json:"service,omitempty"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// jsonLineWriter turns each "[Service] [COMPONENT] message" line into one JSON object.
// Component loggers share it, hence the lock.
type jsonLineWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *jsonLineWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	var tags []string
	for strings.HasPrefix(line, "[") {
		end := strings.Index(line, "] ")
		if end < 0 {
			break
		}
		tags = append(tags, line[1:end])
		line = line[end+2:]
	}

	entry := logEntry{Time: time.Now().UTC().Format(time.RFC3339Nano), Message: line}
	if len(tags) > 0 {
		entry.Service = tags[0]
		entry.Component = strings.Join(tags[1:], "/")
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(append(b, '\n')); err != nil {
		return 0, err
	}
	return len(p), nil
}
