// Package config reads settings from the environment. Every accessor except
// MustString and MayEnum falls back to its default, warning on unparsable input
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"orderlens/internal/platform/logger"
)

// Conf is a prefixed view of the environment, e.g. New().Prefix("EXTRACT_")
type Conf struct{ prefix string }

func New() Conf { return Conf{} }

// Prefix nests p under the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) get(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// lookup parses key with parse, returning def when unset or malformed
func lookup[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	raw := c.get(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		logger.Get().Warn().
			Str("key", c.key(key)).
			Str("value", raw).
			Str("default", fmt.Sprint(def)).
			Msgf("invalid %T, using default", def)
		return def
	}
	return v
}

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	v := c.get(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

func (c Conf) MayString(key, def string) string {
	return lookup(c, key, def, func(s string) (string, error) { return s, nil })
}

func (c Conf) MayInt(key string, def int) int { return lookup(c, key, def, strconv.Atoi) }

// MayPositiveInt is MayInt for sizes and pool widths; zero and below fall back too
func (c Conf) MayPositiveInt(key string, def int) int {
	return lookup(c, key, def, func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err == nil && n <= 0 {
			err = fmt.Errorf("%d is not positive", n)
		}
		return n, err
	})
}

func (c Conf) MayBool(key string, def bool) bool { return lookup(c, key, def, strconv.ParseBool) }

// MayDuration takes Go duration syntax: 90s, 2m, 1h30m
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return lookup(c, key, def, time.ParseDuration)
}

// MayCSV splits on commas and drops blank entries; def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for p := range strings.SplitSeq(c.get(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum matches case-insensitively and returns the lowercased value.
// Anything outside allowed is a deployment error and panics
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
