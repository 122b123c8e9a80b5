package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	authrepo "github.com/Tokarsky98/GroceryMartAI/internal/auth/repository"
	authservice "github.com/Tokarsky98/GroceryMartAI/internal/auth/service"
	cartrepo "github.com/Tokarsky98/GroceryMartAI/internal/cart/repository"
	cartservice "github.com/Tokarsky98/GroceryMartAI/internal/cart/service"
	catalogrepo "github.com/Tokarsky98/GroceryMartAI/internal/catalog/repository"
	checkoutservice "github.com/Tokarsky98/GroceryMartAI/internal/checkout/service"
	"github.com/Tokarsky98/GroceryMartAI/internal/inventory"
	orderrepo "github.com/Tokarsky98/GroceryMartAI/internal/order/repository"
	orderservice "github.com/Tokarsky98/GroceryMartAI/internal/order/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleServiceError maps typed service errors onto HTTP statuses.
// Anything unexpected is logged and reported generically.
func handleServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	var stockErr *inventory.InsufficientStockError
	var validationErr *checkoutservice.ValidationError

	switch {
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error: "Not enough stock available",
			Code:  "insufficient_stock",
			Details: map[string]any{
				"productId":      stockErr.ProductID,
				"requested":      stockErr.Requested,
				"availableStock": stockErr.Available,
			},
		})
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Code:    "validation_failed",
			Details: validationErr.Fields,
		})
	case errors.Is(err, catalogrepo.ErrProductNotFound),
		errors.Is(err, inventory.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Product not found")
	case errors.Is(err, cartrepo.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Cart not found")
	case errors.Is(err, cartrepo.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Item not found in cart")
	case errors.Is(err, orderrepo.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Order not found")
	case errors.Is(err, checkoutservice.ErrNoCheckout):
		respondError(w, http.StatusNotFound, "not_found", "No active checkout session")
	case errors.Is(err, checkoutservice.ErrWrongStep):
		respondError(w, http.StatusConflict, "wrong_step", "Action not allowed from the current step")
	case errors.Is(err, cartservice.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "Quantity must be positive")
	case errors.Is(err, orderservice.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "Your cart is empty")
	case errors.Is(err, authservice.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, authservice.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
	case errors.Is(err, authrepo.ErrEmailTaken):
		respondError(w, http.StatusBadRequest, "email_taken", "User already exists")
	default:
		logger.ErrorContext(ctx, "unhandled service error", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Something went wrong")
	}
}
