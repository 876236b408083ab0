package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvOrDefault returns ENV value or fallback default.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func EnvInt(key string, def int) int {
	raw := EnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️  %s=%q is not an integer, using %d", key, raw, def)
		return def
	}
	return n
}

func EnvInt64(key string, def int64) int64 {
	raw := EnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("⚠️  %s=%q is not an integer, using %d", key, raw, def)
		return def
	}
	return n
}

func EnvFloat(key string, def float64) float64 {
	raw := EnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a number, using %v", key, raw, def)
		return def
	}
	return f
}

func EnvBool(key string, def bool) bool {
	raw := EnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a boolean, using %v", key, raw, def)
		return def
	}
	return b
}

// EnvDuration accepts Go duration strings ("90s", "1h").
func EnvDuration(key string, def time.Duration) time.Duration {
	raw := EnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a duration, using %s", key, raw, def)
		return def
	}
	return d
}

// EnvList splits a comma separated value, dropping empty parts.
func EnvList(key string, def []string) []string {
	raw := EnvOrDefault(key, "")
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// GenerateSecureToken returns a hex token of length random bytes.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
