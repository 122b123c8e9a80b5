package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	authdomain "github.com/Tokarsky98/GroceryMartAI/internal/auth/domain"
	authservice "github.com/Tokarsky98/GroceryMartAI/internal/auth/service"
	cartdomain "github.com/Tokarsky98/GroceryMartAI/internal/cart/domain"
	cartservice "github.com/Tokarsky98/GroceryMartAI/internal/cart/service"
)

type AuthHandler struct {
	auth   *authservice.AuthService
	carts  *cartservice.CartService
	logger *slog.Logger
}

func NewAuthHandler(auth *authservice.AuthService, carts *cartservice.CartService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, carts: carts, logger: logger}
}

type registerRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponseDTO struct {
	Message string           `json:"message"`
	User    *authdomain.User `json:"user"`
	Token   string           `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.mergeGuestCart(r, user.ID)

	respondJSON(w, http.StatusCreated, authResponseDTO{
		Message: "User registered successfully",
		User:    user,
		Token:   token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.mergeGuestCart(r, user.ID)

	respondJSON(w, http.StatusOK, authResponseDTO{
		Message: "Login successful",
		User:    user,
		Token:   token,
	})
}

type forgotPasswordRequestDTO struct {
	Email string `json:"email"`
}

// ForgotPassword acknowledges the request without revealing whether the
// email has an account. No mail delivery is wired up.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Password reset link sent to email"})
}

type resetPasswordRequestDTO struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "token and newPassword are required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

// mergeGuestCart folds the request's guest cart into the account cart.
// Merge failures never fail the sign-in.
func (h *AuthHandler) mergeGuestCart(r *http.Request, userID int64) {
	session := guestSession(r)
	if session == "" {
		return
	}

	from := cartdomain.SessionKey(session)
	to := cartdomain.UserKey(userID)
	if err := h.carts.Merge(r.Context(), from, to); err != nil {
		h.logger.WarnContext(r.Context(), "guest cart merge failed",
			slog.String("from", from),
			slog.String("to", to),
			slog.Any("error", err))
	}
}
