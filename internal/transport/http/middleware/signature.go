package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// SignatureHeader carries the HMAC-SHA256 of the body keyed with the app secret.
const SignatureHeader = "X-Hub-Signature-256"

// maxBodyBytes bounds webhook bodies; the platform batches at most a few KB.
const maxBodyBytes = 1 << 20

// Signature returns middleware that rejects requests whose body does not
// match the "sha256=<hex>" signature header. An empty secret disables the check.
func Signature(appSecret string) func(http.Handler) http.Handler {
	if appSecret == "" {
		slog.Warn("APP_SECRET is not set, webhook signatures will not be verified")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "cannot read request body")
				return
			}
			if len(body) > maxBodyBytes {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			if appSecret != "" && !ValidSignature(appSecret, r.Header.Get(SignatureHeader), body) {
				slog.WarnContext(r.Context(), "invalid webhook signature", "remote", realIP(r))
				writeJSONError(w, http.StatusUnauthorized, "invalid signature")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// ValidSignature reports whether header is "sha256=" followed by the hex
// HMAC-SHA256 of body under secret.
func ValidSignature(secret, header string, body []byte) bool {
	hexSig, ok := strings.CutPrefix(strings.TrimSpace(header), "sha256=")
	if !ok {
		return false
	}
	got, err := hex.DecodeString(hexSig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
