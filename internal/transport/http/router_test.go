package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-waba-webhooks/internal/application/accountupdate"
	"github.com/go-waba-webhooks/internal/application/dispatch"
	"github.com/go-waba-webhooks/internal/config"
	"github.com/go-waba-webhooks/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct{}

func (stubClient) PhoneNumberID() string { return "phone-1" }

const notification = `{"object":"whatsapp_business_account","entry":[{"id":"100","time":1700000000,
"changes":[{"field":"account_update","value":{"phone_number":"15550001111","event":"VERIFIED_ACCOUNT",
"waba_info":{"waba_id":"200","owner_business_id":"300"}}}]}]}`

func testConfig() *config.Config {
	return &config.Config{
		WebhookVerifyToken: "verify-me",
		AppSecret:          "s3cret",
		WebhookRateLimit:   100,
		WebhookRateBurst:   100,
		AllowedOrigins:     []string{"*"},
	}
}

func newTestRouter(t *testing.T, got *[]*domain.AccountUpdate) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	d := dispatch.NewDispatcher(accountupdate.NewParser(nil), stubClient{})
	d.OnAccountUpdate(func(_ context.Context, u *domain.AccountUpdate) error {
		*got = append(*got, u)
		return nil
	}, 0)
	return NewRouter(ctx, testConfig(), &Deps{Dispatcher: d})
}

func signed(body string) *http.Request {
	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write([]byte(body))
	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func TestRouter_AccountUpdateEndToEnd(t *testing.T) {
	var got []*domain.AccountUpdate
	r := newTestRouter(t, &got)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, signed(notification))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got, 1)
	assert.Equal(t, "100", got[0].ID())
	assert.Equal(t, "VERIFIED_ACCOUNT", got[0].Event())
	assert.Equal(t, "200", got[0].WabaInfo().WabaID)
	assert.Equal(t, "phone-1", got[0].Client().PhoneNumberID())
}

func TestRouter_UnsignedRejected(t *testing.T) {
	var got []*domain.AccountUpdate
	r := newTestRouter(t, &got)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(notification)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, got)
}

func TestRouter_MalformedUpdateIsBadRequest(t *testing.T) {
	var got []*domain.AccountUpdate
	r := newTestRouter(t, &got)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, signed(strings.Replace(notification, `"waba_id":"200",`, "", 1)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, got)
}

func TestRouter_Handshake(t *testing.T) {
	var got []*domain.AccountUpdate
	r := newTestRouter(t, &got)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/v1/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())
}

func TestRouter_HealthCheck(t *testing.T) {
	var got []*domain.AccountUpdate
	r := newTestRouter(t, &got)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())
}

func TestRouter_RateLimitKeyedOnClientAddress(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		second     int
	}{
		{"forwarded headers ignored", false, http.StatusTooManyRequests},
		{"trusted proxy", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			cfg := testConfig()
			cfg.WebhookRateLimit = 1
			cfg.WebhookRateBurst = 1
			cfg.TrustProxy = tt.trustProxy
			d := dispatch.NewDispatcher(accountupdate.NewParser(nil), stubClient{})
			r := NewRouter(ctx, cfg, &Deps{Dispatcher: d})

			codes := make([]int, 0, 2)
			for _, forwarded := range []string{"198.51.100.1", "198.51.100.2"} {
				req := httptest.NewRequest(http.MethodGet,
					"/v1/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42", nil)
				req.RemoteAddr = "203.0.113.9:4000"
				req.Header.Set("X-Forwarded-For", forwarded)
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, req)
				codes = append(codes, rec.Code)
			}
			assert.Equal(t, []int{http.StatusOK, tt.second}, codes)
		})
	}
}
