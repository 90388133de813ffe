package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"password":            true,
	"passwd":              true,
	"secret":              true,
	"token":               true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
	"access_token":        true,
	"refresh_token":       true,
	"session":             true,
	"session_id":          true,
	"sessionid":           true,
	"sid":                 true,
	"credential":          true,
	"credentials":         true,
	"auth":                true,
}

// sensitiveKeywords mask any key containing them. "key" alone is left out
// because it matches too much ("primary_key", "monkey").
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "credential", "cookie", "private",
}

// sensitivePatterns mask values regardless of key.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// contactKeys are the keys masked when contact masking is on.
var contactKeys = map[string]func(string) string{
	"email":    MaskEmail,
	"emails":   MaskEmail,
	"phone":    MaskPhone,
	"phones":   MaskPhone,
	"contact":  MaskContact,
	"profile":  MaskProfile,
	"profiles": MaskProfile,
}

// MaskValue replaces secret values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and masks sensitive attributes
// before they reach it.
type SecureHandler struct {
	handler      slog.Handler
	maskContacts bool
}

// HandlerOption configures a SecureHandler.
type HandlerOption func(*SecureHandler)

// WithContactMasking masks values under email, phone and profile keys.
func WithContactMasking(enabled bool) HandlerOption {
	return func(h *SecureHandler) {
		h.maskContacts = enabled
	}
}

// NewSecureHandler wraps handler. A nil handler wraps slog.Default().Handler().
func NewSecureHandler(handler slog.Handler, opts ...HandlerOption) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &SecureHandler{handler: handler}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled implements slog.Handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs implements slog.Handler.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitized), maskContacts: h.maskContacts}
}

// WithGroup implements slog.Handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name), maskContacts: h.maskContacts}
}

func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			sanitized[i] = h.sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitized...)}
	}

	key := strings.ToLower(a.Key)
	if sensitiveKeys[key] || containsSensitiveKeyword(key) {
		return slog.String(a.Key, MaskValue)
	}

	if h.maskContacts {
		if mask, ok := contactKeys[key]; ok {
			return maskContactAttr(a, mask)
		}
	}

	if a.Value.Kind() == slog.KindString && isSensitiveValue(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}

	return a
}

// maskContactAttr masks a string or []string value. Other kinds are
// replaced wholesale.
func maskContactAttr(a slog.Attr, mask func(string) string) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, mask(a.Value.String()))
	case slog.KindAny:
		if values, ok := a.Value.Any().([]string); ok {
			masked := make([]string, len(values))
			for i, v := range values {
				masked[i] = mask(v)
			}
			return slog.Any(a.Key, masked)
		}
	case slog.KindInt64, slog.KindUint64:
		// counts are safe
		return a
	}
	return slog.String(a.Key, MaskValue)
}

func containsSensitiveKeyword(key string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// MaskEmail keeps the first character of the local part and the domain:
// "info@example.com" becomes "i***@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return MaskValue
	}
	return email[:1] + "***" + email[at:]
}

// MaskPhone keeps only the last two digits: "+1 (555) 123-4567" becomes
// "***67".
func MaskPhone(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) < 4 {
		return MaskValue
	}
	return "***" + string(digits[len(digits)-2:])
}

// MaskContact masks an email or a phone number, whichever value looks like.
func MaskContact(value string) string {
	if strings.Contains(value, "@") {
		return MaskEmail(value)
	}
	return MaskPhone(value)
}

// MaskProfile keeps the link up to the handle and the handle's first
// character: "https://t.me/exampleuser" becomes "https://t.me/e***".
func MaskProfile(link string) string {
	trimmed := strings.TrimRight(link, "/")
	slash := strings.LastIndexByte(trimmed, '/')
	if slash < 0 || slash == len(trimmed)-1 {
		return MaskValue
	}
	return trimmed[:slash+2] + "***"
}

// Options selects the logger output.
type Options struct {
	// Verbose lowers the level from Warn to Debug.
	Verbose bool

	// JSON writes JSON lines instead of text.
	JSON bool

	// MaskContacts masks email, phone and profile values.
	MaskContacts bool
}

// New creates a logger writing to w through a SecureHandler.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if opts.JSON {
		base = slog.NewJSONHandler(w, handlerOpts)
	} else {
		base = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(NewSecureHandler(base, WithContactMasking(opts.MaskContacts)))
}

// NewSecureLogger creates a text logger. verbose selects Debug over Warn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return New(w, Options{Verbose: verbose})
}
