// Package raw reads the environment for bootstrap code that runs before the
// logger exists. It must not import the logger.
package raw

import (
	"os"
	"strconv"
	"strings"
)

type Conf struct{ prefix string }

func New() Conf { return Conf{} }

func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Get returns the trimmed value or def.
func (c Conf) Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(c.prefix + key)); v != "" {
		return v
	}
	return def
}

// GetBool treats 1, true and yes as true.
func (c Conf) GetBool(key string, def bool) bool {
	switch strings.ToLower(c.Get(key, "")) {
	case "":
		return def
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetInt accepts non negative integers only.
func (c Conf) GetInt(key string, def int) int {
	n, err := strconv.ParseUint(c.Get(key, ""), 10, 31)
	if err != nil {
		return def
	}
	return int(n)
}
