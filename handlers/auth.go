package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"patrolwatch/auth"
	"patrolwatch/db"
	"patrolwatch/models"
)

type AuthHandler struct {
	store      db.Store
	jwtManager *auth.JWTManager
}

func NewAuthHandler(store db.Store, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		store:      store,
		jwtManager: jwtManager,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, codeValidation, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, codeValidation, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		log.Printf("Login failed for user %s: user not found", req.Username)
		writeError(w, "UNAUTHORIZED", "Invalid username or password", http.StatusUnauthorized)
		return
	}

	passwordHash, err := h.store.GetPasswordHash(r.Context(), user.UserID)
	if err != nil {
		log.Printf("Login failed for user %s: password hash not found", req.Username)
		writeError(w, "UNAUTHORIZED", "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if err := auth.CheckPassword(req.Password, passwordHash); err != nil {
		log.Printf("Login failed for user %s: invalid password", req.Username)
		writeError(w, "UNAUTHORIZED", "Invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		log.Printf("Failed to generate token for user %s: %v", req.Username, err)
		writeError(w, codeInternal, "Failed to generate authentication token", http.StatusInternalServerError)
		return
	}

	refreshToken, err := h.jwtManager.GenerateRefreshToken(user)
	if err != nil {
		log.Printf("Failed to generate refresh token for user %s: %v", req.Username, err)
		writeError(w, codeInternal, "Failed to generate refresh token", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ User logged in: %s (role: %s)", user.Username, user.Role)

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         user,
	})
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	Token string `json:"token"`
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, codeValidation, "Invalid request body", http.StatusBadRequest)
		return
	}

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		writeError(w, "UNAUTHORIZED", "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	user, err := h.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, "UNAUTHORIZED", "User not found", http.StatusUnauthorized)
		return
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		log.Printf("Failed to generate token for user %s: %v", user.Username, err)
		writeError(w, codeInternal, "Failed to generate authentication token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, RefreshTokenResponse{Token: token})
}
