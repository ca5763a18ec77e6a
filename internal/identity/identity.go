// Package identity provides the self-declared player label carried by
// requests.
package identity

import (
	"context"
	"net"
	"net/http"
	"strings"
	"unicode"

	"github.com/ashureev/tiny-arcade/internal/domain"
	"golang.org/x/text/unicode/norm"
)

const (
	// LabelHeaderName carries the player label when a request body has none.
	LabelHeaderName = "X-Player-Label"
	// MaxLabelRunes bounds a sanitized label.
	MaxLabelRunes = 32
)

type contextKey int

const labelKey contextKey = iota

// LabelFromContext returns the sanitized player label of the request, or
// domain.AnonymousPlayer when none was sent.
func LabelFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(labelKey).(string); ok && v != "" {
		return v
	}
	return domain.AnonymousPlayer
}

// WithLabel returns a copy of ctx carrying label.
func WithLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, labelKey, SanitizeLabel(label))
}

// SanitizeLabel normalizes a display label: NFC form, control characters
// dropped, runs of whitespace collapsed, at most MaxLabelRunes runes. An
// empty result means the player is anonymous.
func SanitizeLabel(label string) string {
	label = norm.NFC.String(label)

	var b strings.Builder
	n := 0
	space := false
	for _, r := range strings.TrimSpace(label) {
		if n == MaxLabelRunes {
			break
		}
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			continue
		}
		if space && n > 0 {
			b.WriteByte(' ')
			n++
			if n == MaxLabelRunes {
				break
			}
		}
		space = false
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// Middleware reads the player label header into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		label := r.Header.Get(LabelHeaderName)
		if label == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithLabel(r.Context(), label)))
	})
}

// IPFromRequest returns a normalized remote IP for rate limiting and request
// tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
