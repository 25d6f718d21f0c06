package config

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyInfo describes one settable config key for display.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
}

// ShowAll lists every non-secret key with its effective value. Secrets
// are env-only and never echoed.
func ShowAll(cfg Config) []KeyInfo {
	infos := make([]KeyInfo, 0, len(specs))
	for _, s := range specs {
		if s.secret {
			continue
		}
		infos = append(infos, KeyInfo{
			Key:    s.key,
			EnvVar: s.env,
			Value:  fmt.Sprint(s.extract(cfg)),
		})
	}
	return infos
}

// SetKey persists one key to the config file. Unknown and secret keys
// are rejected; the unknown-key error lists what is settable.
func SetKey(key, value string) error {
	s, ok := lookupSpec(key)
	if !ok {
		return fmt.Errorf("unknown config key %q (settable keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	if s.secret {
		return fmt.Errorf("cannot set secret %q via config; use environment variable %s", key, s.env)
	}

	b := newFileBackend()
	if s.typ == kInt {
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %w", key, err)
		}
		return b.SetInt(key, i)
	}
	return b.SetString(key, value)
}

// ValidKeys returns the non-secret key names in spec order.
func ValidKeys() []string {
	keys := make([]string, 0, len(specs))
	for _, s := range specs {
		if !s.secret {
			keys = append(keys, s.key)
		}
	}
	return keys
}

func lookupSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}
