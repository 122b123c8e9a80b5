package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	authservice "github.com/Tokarsky98/GroceryMartAI/internal/auth/service"
	cartservice "github.com/Tokarsky98/GroceryMartAI/internal/cart/service"
	catalogservice "github.com/Tokarsky98/GroceryMartAI/internal/catalog/service"
	checkoutservice "github.com/Tokarsky98/GroceryMartAI/internal/checkout/service"
	orderservice "github.com/Tokarsky98/GroceryMartAI/internal/order/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Services bundles everything the router serves.
type Services struct {
	Auth     *authservice.AuthService
	Catalog  *catalogservice.CatalogService
	Carts    *cartservice.CartService
	Checkout *checkoutservice.Checkout
	Ledger   *orderservice.Ledger
	Logger   *slog.Logger

	RequestTimeout time.Duration
}

// NewRouter builds the storefront API.
func NewRouter(s Services) http.Handler {
	authHandler := NewAuthHandler(s.Auth, s.Carts, s.Logger)
	productHandler := NewProductHandler(s.Catalog, s.Logger)
	cartHandler := NewCartHandler(s.Carts, s.Catalog, s.Logger)
	checkoutHandler := NewCheckoutHandler(s.Checkout, s.Logger)
	ordersHandler := NewOrdersHandler(s.Ledger, s.Logger)

	timeout := s.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))
	r.Use(IdentityMiddleware(s.Auth))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{
				"status":  "OK",
				"message": "Grocery Shop API is running",
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/search", productHandler.Search)
			r.Get("/{id}", productHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/", productHandler.Create)
				r.Put("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})
		})

		r.Get("/categories", productHandler.Categories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/add", cartHandler.AddItem)
			r.Put("/update", cartHandler.UpdateItem)
			r.Delete("/remove/{productId}", cartHandler.RemoveItem)
			r.Delete("/clear", cartHandler.ClearCart)
			r.Post("/merge", cartHandler.Merge)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(RequireAuth)
			r.Post("/", checkoutHandler.Start)
			r.Get("/", checkoutHandler.Current)
			r.Post("/shipping", checkoutHandler.SubmitShipping)
			r.Post("/payment", checkoutHandler.SubmitPayment)
			r.Post("/back", checkoutHandler.Back)
			r.Put("/field", checkoutHandler.UpdateField)
			r.Post("/submit", checkoutHandler.Submit)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(RequireAuth)
			r.Post("/", ordersHandler.Place)
			r.Get("/", ordersHandler.List)
			r.Get("/{id}", ordersHandler.Get)
		})
	})

	return otelhttp.NewHandler(r, "grocerymart-api")
}
