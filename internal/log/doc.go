// Package log builds slog loggers that never write secrets, and optionally
// never write the contacts a crawl collects.
//
// SecureHandler wraps any slog.Handler. It replaces values under
// credential-like keys (cookie, authorization, token, password...) and
// values that look like credentials (bearer tokens, JWTs, long API keys)
// with MaskValue. With contact masking enabled it also shortens values
// under the email and phone keys, so logs can be shared without leaking
// the data the crawl gathered:
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true, MaskContacts: true})
//	logger.Debug("contact", "email", "info@example.com") // email=i***@example.com
package log
