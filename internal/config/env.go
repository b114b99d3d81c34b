package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envReader reads typed variables, falling back to the default when a
// variable is unset and remembering the ones that fail to parse.
type envReader struct {
	invalid []string
}

func (e *envReader) lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func (e *envReader) String(key, def string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return def
}

func (e *envReader) Int(key string, def int) int {
	return parse(e, key, def, strconv.Atoi)
}

func (e *envReader) Float(key string, def float64) float64 {
	return parse(e, key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func (e *envReader) Bool(key string, def bool) bool {
	return parse(e, key, def, strconv.ParseBool)
}

func (e *envReader) Duration(key string, def time.Duration) time.Duration {
	return parse(e, key, def, time.ParseDuration)
}

// List splits a comma-separated variable, dropping empty entries.
func (e *envReader) List(key string) []string {
	value, ok := e.lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parse[T any](e *envReader, key string, def T, fn func(string) (T, error)) T {
	value, ok := e.lookup(key)
	if !ok {
		return def
	}
	parsed, err := fn(value)
	if err != nil {
		e.invalid = append(e.invalid, key)
		return def
	}
	return parsed
}
