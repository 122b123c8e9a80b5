package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	orderdomain "github.com/Tokarsky98/GroceryMartAI/internal/order/domain"
	orderservice "github.com/Tokarsky98/GroceryMartAI/internal/order/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	ledger *orderservice.Ledger
	logger *slog.Logger
}

func NewOrdersHandler(ledger *orderservice.Ledger, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{ledger: ledger, logger: logger}
}

type placeOrderRequestDTO struct {
	Shipping orderdomain.ShippingInfo   `json:"shippingAddress"`
	Payment  orderdomain.PaymentSummary `json:"paymentMethod"`
	Delivery orderdomain.DeliveryOption `json:"deliveryOption"`
}

// Place records an order straight from the caller's cart, bypassing the
// checkout wizard. Exists for API clients; the storefront goes through
// /api/checkout.
func (h *OrdersHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Delivery == "" {
		req.Delivery = orderdomain.DeliveryStandard
	}

	id := identityFrom(r.Context())
	order, err := h.ledger.PlaceOrder(r.Context(), id.CartKey, id.UserID, req.Shipping, req.Payment, req.Delivery)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	orders, err := h.ledger.ListOrders(r.Context(), id.UserID)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	id := identityFrom(r.Context())
	order, err := h.ledger.GetOrder(r.Context(), id.UserID, orderID)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
