package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	cartdomain "github.com/Tokarsky98/GroceryMartAI/internal/cart/domain"
	cartservice "github.com/Tokarsky98/GroceryMartAI/internal/cart/service"
	catalogdomain "github.com/Tokarsky98/GroceryMartAI/internal/catalog/domain"
	catalogrepo "github.com/Tokarsky98/GroceryMartAI/internal/catalog/repository"
	catalogservice "github.com/Tokarsky98/GroceryMartAI/internal/catalog/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	carts   *cartservice.CartService
	catalog *catalogservice.CatalogService
	logger  *slog.Logger
}

func NewCartHandler(carts *cartservice.CartService, catalog *catalogservice.CatalogService, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog, logger: logger}
}

type addItemRequestDTO struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type updateItemRequestDTO struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type mergeRequestDTO struct {
	GuestSession string `json:"guestSession"`
}

type cartItemDTO struct {
	ProductID int64                  `json:"productId"`
	Quantity  int                    `json:"quantity"`
	Product   *catalogdomain.Product `json:"product,omitempty"`
	Subtotal  decimal.Decimal        `json:"subtotal"`
}

type cartViewDTO struct {
	Items []cartItemDTO   `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.cartView(r)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	key := identityFrom(r.Context()).CartKey
	if err := h.carts.AddItem(r.Context(), key, req.ProductID, req.Quantity); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.respondCart(w, r, "Item added to cart")
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId must be positive")
		return
	}

	key := identityFrom(r.Context()).CartKey
	if err := h.carts.SetQuantity(r.Context(), key, req.ProductID, req.Quantity); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.respondCart(w, r, "Cart updated")
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId must be a positive integer")
		return
	}

	key := identityFrom(r.Context()).CartKey
	if err := h.carts.RemoveItem(r.Context(), key, productID); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.respondCart(w, r, "Item removed from cart")
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	key := identityFrom(r.Context()).CartKey
	if err := h.carts.Clear(r.Context(), key); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	h.respondCart(w, r, "Cart cleared")
}

// Merge folds a presented guest cart into the caller's cart. Meant for
// clients that signed in before this server learned about their guest
// session.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	if !id.Authenticated {
		respondError(w, http.StatusUnauthorized, "unauthorized", "Access token required")
		return
	}

	var req mergeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GuestSession == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "guestSession is required")
		return
	}

	from := cartdomain.SessionKey(req.GuestSession)
	if err := h.carts.Merge(r.Context(), from, id.CartKey); err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.respondCart(w, r, "Carts merged")
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, message string) {
	view, err := h.cartView(r)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"items":   view.Items,
		"total":   view.Total,
	})
}

// cartView joins cart lines with catalog data for display. Delisted
// products render without product details and price nothing.
func (h *CartHandler) cartView(r *http.Request) (*cartViewDTO, error) {
	ctx := r.Context()
	key := identityFrom(ctx).CartKey

	cart, err := h.carts.GetCart(ctx, key)
	if err != nil {
		return nil, err
	}

	view := &cartViewDTO{Items: make([]cartItemDTO, 0, len(cart.Items)), Total: decimal.Zero}
	for _, item := range cart.Items {
		line := cartItemDTO{ProductID: item.ProductID, Quantity: item.Quantity, Subtotal: decimal.Zero}

		product, err := h.catalog.Get(ctx, item.ProductID)
		switch {
		case err == nil:
			line.Product = product
			line.Subtotal = product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			view.Total = view.Total.Add(line.Subtotal)
		case errors.Is(err, catalogrepo.ErrProductNotFound):
			// keep the bare line
		default:
			return nil, err
		}

		view.Items = append(view.Items, line)
	}
	return view, nil
}
