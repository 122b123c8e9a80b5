package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	checkoutdomain "github.com/Tokarsky98/GroceryMartAI/internal/checkout/domain"
	checkoutservice "github.com/Tokarsky98/GroceryMartAI/internal/checkout/service"
)

type CheckoutHandler struct {
	checkout *checkoutservice.Checkout
	logger   *slog.Logger
}

func NewCheckoutHandler(checkout *checkoutservice.Checkout, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

type updateFieldRequestDTO struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	session := h.checkout.Start(id.CartKey, id.UserID)
	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) Current(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	session, err := h.checkout.Current(id.CartKey)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	var form checkoutdomain.ShippingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	id := identityFrom(r.Context())
	session, err := h.checkout.SubmitShipping(id.CartKey, form)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var form checkoutdomain.PaymentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	id := identityFrom(r.Context())
	session, err := h.checkout.SubmitPayment(id.CartKey, form)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	session, err := h.checkout.Back(id.CartKey)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// UpdateField formats a single field as the shopper types and returns
// the canonical value plus any live validation message.
func (h *CheckoutHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req updateFieldRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Field == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "field is required")
		return
	}

	id := identityFrom(r.Context())
	formatted, fieldErrs, err := h.checkout.UpdateField(id.CartKey, req.Field, req.Value)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"field":  req.Field,
		"value":  formatted,
		"errors": fieldErrs,
	})
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	order, err := h.checkout.Submit(r.Context(), id.CartKey)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}
