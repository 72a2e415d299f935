package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/rcmp123/backend/internal/payments"
	"github.com/rcmp123/backend/internal/services"
)

// SignatureHeader carries the processor's webhook signature.
const SignatureHeader = "Stripe-Signature"

const maxWebhookBytes = 1 << 20

type WebhookHandler struct {
	service *services.FulfillmentService
}

func NewWebhookHandler(service *services.FulfillmentService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// HandleWebhook processes payment processor notifications
// @Summary Payment processor webhook
// @Description Verify and apply an asynchronous payment notification
// @Tags checkout
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Acknowledged"
// @Failure 400 {object} services.ErrorResponse "Invalid signature or payload"
// @Router /payments/webhook [post]
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		services.SendErrorResponse(w, "Failed to read request body", http.StatusBadRequest, nil)
		return
	}

	err = h.service.HandleNotification(r.Context(), rawBody, r.Header.Get(SignatureHeader))
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			// Generic to the caller; detail is already logged server-side.
			services.SendErrorResponse(w, "Invalid signature", http.StatusBadRequest, nil)
			return
		}
		// Transient apply failure; the processor will redeliver and the
		// idempotent transition absorbs the retry.
		services.SendErrorResponse(w, "Failed to process notification", http.StatusInternalServerError, nil)
		return
	}

	services.SendJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
