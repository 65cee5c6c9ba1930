// Package logger provides structured logging for taskdeck.
package logger

import (
	"log/slog"
	"strings"
)

// Key fragments that mark an attribute as sensitive.
var sensitiveKeyPatterns = []string{
	"password",
	"passphrase",
	"secret",
	"token",
	"credential",
	"authorization",
	"bearer",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks credentials in a single attribute, recursing into groups.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if IsSensitiveKey(a.Key) || IsSensitiveValue(v) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
// Keys ending in "_id" (request_id, owner_id) are identifiers, not secrets.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if strings.HasSuffix(k, "_id") {
		return false
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether a value looks like a credential:
// a bearer header or a three-part JWT.
func IsSensitiveValue(value string) bool {
	if strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return true
	}
	return looksLikeJWT(value)
}

func looksLikeJWT(value string) bool {
	if !strings.HasPrefix(value, "eyJ") {
		return false
	}
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\n") {
			return false
		}
	}
	return true
}

// RedactString masks value if it looks sensitive and returns it unchanged otherwise.
func RedactString(value string) string {
	if IsSensitiveValue(value) {
		return redactedValue
	}
	return value
}
