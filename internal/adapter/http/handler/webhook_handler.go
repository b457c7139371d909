package handler

import (
	"io"

	"topup-pro/internal/adapter/http/dto"
	"topup-pro/internal/core/ports"
	"topup-pro/internal/metrics"
	"topup-pro/internal/provider"
	"topup-pro/pkg/apperror"
	"topup-pro/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookHandler terminates provider callbacks. The body is read raw
// once and the exact bytes flow through signature verification, parsing
// and the audit log; re-serialized JSON would break HMAC verification.
type WebhookHandler struct {
	registry   *provider.Registry
	reconciler ports.Reconciler
	log        zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(registry *provider.Registry, reconciler ports.Reconciler, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		registry:   registry,
		reconciler: reconciler,
		log:        log,
	}
}

// Paystack handles POST /api/webhooks/paystack.
func (h *WebhookHandler) Paystack(c *gin.Context) {
	h.handle(c, "paystack")
}

// Flutterwave handles POST /api/webhooks/flutterwave.
func (h *WebhookHandler) Flutterwave(c *gin.Context) {
	h.handle(c, "flutterwave")
}

// VTUProvider handles POST /api/webhooks/vtu-providers?provider=<name>.
func (h *WebhookHandler) VTUProvider(c *gin.Context) {
	h.handle(c, c.Query("provider"))
}

// handle runs the shared pipeline: resolve adapter, verify signature on
// the raw bytes, parse, reconcile, acknowledge.
func (h *WebhookHandler) handle(c *gin.Context, providerName string) {
	adapter, ok := h.registry.Get(providerName)
	if !ok {
		response.Error(c, apperror.ErrUnknownProvider(providerName))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	if err := adapter.VerifySignature(body, c.Request.Header); err != nil {
		// Rejected deliveries never reach the webhook log: an attacker
		// must not be able to grow the audit table.
		metrics.WebhookEventsTotal.WithLabelValues(providerName, "rejected").Inc()
		h.log.Warn().
			Str("provider", providerName).
			Str("client_ip", c.ClientIP()).
			Msg("webhook signature rejected")
		response.Error(c, err)
		return
	}

	event, err := adapter.ParseEvent(body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(providerName, "malformed").Inc()
		response.Error(c, err)
		return
	}

	outcome, err := h.reconciler.Reconcile(c.Request.Context(), event)
	if err != nil {
		// 5xx tells the provider to redeliver.
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WebhookAck{Status: ackStatus(outcome)})
}

// ackStatus maps a reconcile outcome to the acknowledgement body.
func ackStatus(outcome ports.ReconcileOutcome) string {
	if outcome == ports.OutcomeApplied {
		return "processed"
	}
	return string(outcome)
}
