package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/internal/provider"
	"topup-pro/pkg/apperror"
	"topup-pro/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPaystackKey  = "sk_test_webhook"
	testVTPassSecret = "vtpass_secret"
)

type stubReconciler struct {
	outcome ports.ReconcileOutcome
	err     error
	events  []*domain.ProviderEvent
}

func (r *stubReconciler) Reconcile(ctx context.Context, event *domain.ProviderEvent) (ports.ReconcileOutcome, error) {
	r.events = append(r.events, event)
	if r.err != nil {
		return "", r.err
	}
	return r.outcome, nil
}

func newWebhookHandler(rec *stubReconciler) *WebhookHandler {
	registry := provider.NewRegistry(
		provider.NewPaystackAdapter(testPaystackKey),
		provider.NewFlutterwaveAdapter("flw-hash"),
		provider.NewVTPassAdapter(testVTPassSecret),
	)
	return NewWebhookHandler(registry, rec, logger.New("error", false))
}

func webhookRequest(t *testing.T, path string, body []byte, headers map[string]string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return w, c
}

func signSHA512(key string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func signSHA256(key string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhook_Paystack_ValidSignature(t *testing.T) {
	rec := &stubReconciler{outcome: ports.OutcomeApplied}
	h := newWebhookHandler(rec)

	body := []byte(`{"event":"charge.success","data":{"id":1,"reference":"FND-1","status":"success","amount":500000}}`)
	w, c := webhookRequest(t, "/api/webhooks/paystack", body, map[string]string{
		provider.HeaderPaystackSignature: signSHA512(testPaystackKey, body),
	})

	h.Paystack(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "processed", data["status"])

	require.Len(t, rec.events, 1)
	assert.Equal(t, "FND-1", rec.events[0].Reference)
	assert.Equal(t, domain.TransactionStatusCompleted, rec.events[0].Status)
}

func TestWebhook_Paystack_InvalidSignature(t *testing.T) {
	rec := &stubReconciler{outcome: ports.OutcomeApplied}
	h := newWebhookHandler(rec)

	body := []byte(`{"event":"charge.success","data":{"reference":"FND-1"}}`)
	w, c := webhookRequest(t, "/api/webhooks/paystack", body, map[string]string{
		provider.HeaderPaystackSignature: signSHA512("wrong-key", body),
	})

	h.Paystack(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// Rejected deliveries never reach the reconciler.
	assert.Empty(t, rec.events)
}

func TestWebhook_Paystack_MissingSignature(t *testing.T) {
	rec := &stubReconciler{outcome: ports.OutcomeApplied}
	h := newWebhookHandler(rec)

	body := []byte(`{"event":"charge.success","data":{"reference":"FND-1"}}`)
	w, c := webhookRequest(t, "/api/webhooks/paystack", body, nil)

	h.Paystack(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, rec.events)
}

func TestWebhook_Paystack_MalformedPayload(t *testing.T) {
	rec := &stubReconciler{outcome: ports.OutcomeApplied}
	h := newWebhookHandler(rec)

	body := []byte(`{"event":"charge.success","data":{}}`)
	w, c := webhookRequest(t, "/api/webhooks/paystack", body, map[string]string{
		provider.HeaderPaystackSignature: signSHA512(testPaystackKey, body),
	})

	h.Paystack(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, rec.events)
}

func TestWebhook_DuplicateDelivery(t *testing.T) {
	rec := &stubReconciler{outcome: ports.OutcomeDuplicate}
	h := newWebhookHandler(rec)

	body := []byte(`{"event":"charge.success","data":{"reference":"FND-1","status":"success"}}`)
	w, c := webhookRequest(t, "/api/webhooks/paystack", body, map[string]string{
		provider.HeaderPaystackSignature: signSHA512(testPaystackKey, body),
	})

	h.Paystack(c)

	// Duplicates are acknowledged 200 so the provider stops redelivering.
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "duplicate", data["status"])
}

func TestWebhook_ReconcilerError_Returns5xx(t *testing.T) {
	rec := &stubReconciler{err: apperror.InternalError(errors.New("db down"))}
	h := newWebhookHandler(rec)

	body := []byte(`{"event":"charge.success","data":{"reference":"FND-1","status":"success"}}`)
	w, c := webhookRequest(t, "/api/webhooks/paystack", body, map[string]string{
		provider.HeaderPaystackSignature: signSHA512(testPaystackKey, body),
	})

	h.Paystack(c)

	// 5xx tells the provider to redeliver.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebhook_VTUProvider_Routing(t *testing.T) {
	rec := &stubReconciler{outcome: ports.OutcomeApplied}
	h := newWebhookHandler(rec)

	body := []byte(`{"request_id":"AIR-1","status":"delivered","transaction_id":"VT-9"}`)
	w, c := webhookRequest(t, "/api/webhooks/vtu-providers?provider=vtpass", body, map[string]string{
		"x-vtpass-signature": signSHA256(testVTPassSecret, body),
	})

	h.VTUProvider(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "vtpass", rec.events[0].Provider)
	assert.Equal(t, "AIR-1", rec.events[0].Reference)
}

func TestWebhook_UnknownProvider(t *testing.T) {
	rec := &stubReconciler{outcome: ports.OutcomeApplied}
	h := newWebhookHandler(rec)

	body := []byte(`{"request_id":"AIR-1","status":"delivered"}`)
	w, c := webhookRequest(t, "/api/webhooks/vtu-providers?provider=stripe", body, nil)

	h.VTUProvider(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, rec.events)
}
