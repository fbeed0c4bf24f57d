package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// echo writes back the body it received.
var echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	_, _ = w.Write(b)
})

func TestValidSignature(t *testing.T) {
	body := []byte(`{"entry":[]}`)
	assert.True(t, ValidSignature("s3cret", sign("s3cret", string(body)), body))
	assert.False(t, ValidSignature("s3cret", sign("other", string(body)), body))
	assert.False(t, ValidSignature("s3cret", strings.TrimPrefix(sign("s3cret", string(body)), "sha256="), body))
	assert.False(t, ValidSignature("s3cret", "sha256=zz", body))
	assert.False(t, ValidSignature("s3cret", "", body))
}

func TestSignature_AcceptsAndRestoresBody(t *testing.T) {
	body := `{"object":"whatsapp_business_account"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(body))
	req.Header.Set(SignatureHeader, sign("s3cret", body))
	rec := httptest.NewRecorder()

	Signature("s3cret")(echo).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())
}

func TestSignature_RejectsBadSignature(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(`{}`))
	req.Header.Set(SignatureHeader, sign("wrong", `{}`))
	rec := httptest.NewRecorder()

	Signature("s3cret")(echo).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid signature"}`, rec.Body.String())
}

func TestSignature_EmptySecretSkipsCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	Signature("")(echo).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignature_RejectsOversizedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(strings.Repeat("a", maxBodyBytes+1)))
	rec := httptest.NewRecorder()

	Signature("")(echo).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
