package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

// String returns the trimmed value of name, or def when unset or blank.
func String(name, def string, log *logger.Logger) string {
	v, ok := lookup(name)
	if !ok {
		logDefault(log, name)
		return def
	}
	return v
}

func Int(name string, def int, log *logger.Logger) int {
	v, ok := lookup(name)
	if !ok {
		logDefault(log, name)
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logUnparsable(log, name, err)
		return def
	}
	return i
}

func Float(name string, def float64, log *logger.Logger) float64 {
	v, ok := lookup(name)
	if !ok {
		logDefault(log, name)
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logUnparsable(log, name, err)
		return def
	}
	return f
}

func Bool(name string, def bool, log *logger.Logger) bool {
	v, ok := lookup(name)
	if !ok {
		logDefault(log, name)
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on", "y":
		return true
	case "0", "false", "no", "off", "n":
		return false
	}
	logUnparsable(log, name, nil)
	return def
}

// Duration accepts Go duration syntax ("168h", "30m") or a bare integer of seconds.
func Duration(name string, def time.Duration, log *logger.Logger) time.Duration {
	v, ok := lookup(name)
	if !ok {
		logDefault(log, name)
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logUnparsable(log, name, err)
		return def
	}
	return d
}

// List splits a comma separated variable, dropping empty entries.
func List(name string, def []string, log *logger.Logger) []string {
	v, ok := lookup(name)
	if !ok {
		logDefault(log, name)
		return def
	}
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Present reports whether every named variable is set to a non-blank value.
func Present(names ...string) bool {
	for _, name := range names {
		if _, ok := lookup(name); !ok {
			return false
		}
	}
	return len(names) > 0
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func logDefault(log *logger.Logger, name string) {
	if log != nil {
		log.Debug("Environment variable not set, using default", "env_var", name)
	}
}

func logUnparsable(log *logger.Logger, name string, err error) {
	if log != nil {
		log.Warn("Environment variable could not be parsed, using default", "env_var", name, "error", err)
	}
}
