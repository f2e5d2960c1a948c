// Package log builds the slog loggers used by the command line tools. Every
// logger masks resource keys before a record reaches its writer.
package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces any value that looks like a credential
const MaskValue = "***REDACTED***"

// sensitiveKeys are attribute keys whose values are always masked
var sensitiveKeys = map[string]bool{
	"ocp-apim-subscription-key": true,
	"authorization":             true,
	"ai_service_key":            true,
	"api-key":                   true,
	"api_key":                   true,
	"apikey":                    true,
	"key":                       true,
	"subscription_key":          true,
}

// sensitiveKeywords catch attribute keys such as "service.key" or "x-auth-token"
var sensitiveKeywords = []string{"secret", "token", "password", "subscription", "auth"}

var sensitivePatterns = []*regexp.Regexp{
	// Cognitive Services resource keys are 32 hex digits; newer ones are 84 alphanumerics
	regexp.MustCompile(`^[A-Fa-f0-9]{32}$`),
	regexp.MustCompile(`^[A-Za-z0-9]{84}$`),
	regexp.MustCompile(`(?i)^bearer\s+.+`),
}

// SecureHandler wraps another handler and masks credentials in every attribute
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler; nil means the default handler
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(sanitize(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitize(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(clean)}
}

func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitize(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, g := range group {
			clean[i] = sanitize(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}
	if a.Value.Kind() == slog.KindString && IsSensitiveValue(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}
	return a
}

// IsSensitiveKey reports whether values logged under key must be masked
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if sensitiveKeys[key] || strings.HasSuffix(key, "_key") || strings.HasSuffix(key, ".key") {
		return true
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value looks like a resource key or bearer token
func IsSensitiveValue(value string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// NewLogger returns a text logger on w. verbose lowers the level from warn to debug.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)})))
}

// NewJSONLogger is NewLogger with JSON output
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)})))
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
