// Package config reads settings from the environment. A Conf is a prefixed
// view, e.g. root.Prefix("CORE_API_"); malformed values log a warning and
// fall back to the default.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"scandesk/internal/platform/logger"
)

type Conf struct{ prefix string }

func New() Conf { return Conf{} }

// Prefix returns a view whose keys are prefixed by p.
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) lookup(key string) (string, string) {
	k := c.prefix + key
	return k, strings.TrimSpace(os.Getenv(k))
}

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	k, s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", k).Str("value", s).Interface("default", def).Msg("invalid config value; using default")
		return def
	}
	return v
}

func (c Conf) MayString(key, def string) string {
	return may(c, key, def, func(s string) (string, error) { return s, nil })
}

func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

func (c Conf) MayFloat64(key string, def float64) float64 {
	return may(c, key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayCSV splits a comma separated list, dropping blanks. def when nothing is left.
func (c Conf) MayCSV(key string, def []string) []string {
	_, s := c.lookup(key)
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
