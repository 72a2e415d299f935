package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rcmp123/backend/internal/payments"
	"github.com/rcmp123/backend/internal/services"
)

type CheckoutHandler struct {
	service   *services.CheckoutService
	validator *services.ValidationHelper
}

func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// CreateCheckout creates a hosted checkout session for a listing
// @Summary Create a checkout session
// @Description Create a payment processor checkout session for a listing and return the redirect URL
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body object{listingId=int,buyerEmail=string} true "Checkout request"
// @Success 200 {object} object{checkoutUrl=string}
// @Failure 400 {object} services.ErrorResponse "Already sold or seller not payable"
// @Failure 404 {object} services.ErrorResponse "Listing not found"
// @Failure 502 {object} services.ErrorResponse "Payment processor error"
// @Router /checkout [post]
func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListingID  int    `json:"listingId" validate:"required,gt=0"`
		BuyerEmail string `json:"buyerEmail" validate:"required,email"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	checkoutURL, err := h.service.CreateCheckout(r.Context(), req.ListingID, req.BuyerEmail)
	if err != nil {
		var procErr *payments.Error
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			services.SendErrorResponse(w, "Listing not found", http.StatusNotFound, nil)
		case errors.Is(err, services.ErrAlreadySold):
			services.SendErrorResponse(w, "Listing already sold", http.StatusBadRequest, nil)
		case errors.Is(err, services.ErrSellerNotPayable):
			services.SendErrorResponse(w, "Seller not connected for payouts", http.StatusBadRequest, nil)
		case errors.As(err, &procErr):
			services.SendErrorResponse(w, "Payment processor unavailable, please retry", http.StatusBadGateway, nil)
		default:
			services.SendErrorResponse(w, "Failed to create checkout session", http.StatusInternalServerError, nil)
		}
		return
	}

	services.SendJSON(w, http.StatusOK, map[string]string{"checkoutUrl": checkoutURL})
}

// PaymentSuccess is the buyer's return target after a completed checkout.
// The sold transition is driven by the webhook, never by this redirect.
// @Summary Post-payment success page
// @Tags checkout
// @Produce json
// @Param listing_id query int true "Listing ID"
// @Success 200 {object} map[string]interface{} "Payment complete"
// @Failure 400 {object} services.ErrorResponse "Invalid listing id"
// @Router /payment_success [get]
func PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	listingID, err := strconv.Atoi(r.URL.Query().Get("listing_id"))
	if err != nil {
		services.SendErrorResponse(w, "Invalid listing id", http.StatusBadRequest, nil)
		return
	}

	services.SendJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"listing_id": listingID,
		"message":    "Payment complete. Item marked as sold.",
	})
}

// PaymentCancel is the buyer's return target after abandoning checkout.
// @Summary Post-payment cancel page
// @Tags checkout
// @Produce json
// @Success 200 {object} map[string]string "Payment canceled"
// @Router /payment_cancel [get]
func PaymentCancel(w http.ResponseWriter, r *http.Request) {
	services.SendJSON(w, http.StatusOK, map[string]string{
		"status":  "canceled",
		"message": "Payment was canceled.",
	})
}
