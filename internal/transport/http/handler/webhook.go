package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-waba-webhooks/internal/application/accountupdate"
	"github.com/go-waba-webhooks/internal/pkg/id"
)

// Dispatcher is the minimal interface the webhook handler requires to route payloads.
type Dispatcher interface {
	Dispatch(ctx context.Context, raw map[string]any) error
}

// WebhookHandler serves the platform's subscription handshake and notifications.
type WebhookHandler struct {
	dispatcher  Dispatcher
	verifyToken string
}

func NewWebhookHandler(dispatcher Dispatcher, verifyToken string) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher, verifyToken: verifyToken}
}

// Verify answers the subscription handshake by echoing hub.challenge when
// hub.verify_token matches.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := q.Get("hub.verify_token")
	if q.Get("hub.mode") != "subscribe" || subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		writeError(w, http.StatusForbidden, "verification failed")
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(q.Get("hub.challenge")))
}

// Receive decodes a notification and dispatches it.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	deliveryID := id.New()
	logger := slog.With("delivery_id", deliveryID)

	raw, err := accountupdate.Decode(r.Body)
	if err != nil {
		logger.WarnContext(r.Context(), "invalid webhook body", "err", err)
		httpError(w, err)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), raw); err != nil {
		logger.ErrorContext(r.Context(), "webhook dispatch failed", "err", err)
		httpError(w, err)
		return
	}
	logger.DebugContext(r.Context(), "webhook dispatched")
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok", DeliveryID: deliveryID})
}
