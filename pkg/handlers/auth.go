package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"org-registry-backend/pkg/config"
	"org-registry-backend/pkg/database"
	"org-registry-backend/pkg/middleware"
	"org-registry-backend/pkg/models"
	"org-registry-backend/pkg/utils"
)

// AuthHandler serves registration, login, and token refresh.
type AuthHandler struct {
	config *config.Config
	db     database.Store
}

// NewAuthHandler creates the handler.
func NewAuthHandler(cfg *config.Config, db database.Store) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		db:     db,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserRegisterRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		utils.WriteValidationErrorResponse(w, "email is required", "")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		utils.WriteValidationErrorResponse(w, "invalid email address", email)
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		utils.WriteValidationErrorResponse(w, err.Error(), "")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to process password")
		return
	}

	user := &models.User{
		Email:    email,
		Password: hash,
		IsActive: true,
	}
	if err := h.db.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			utils.WriteValidationErrorResponse(w, "email already registered", email)
			return
		}
		utils.WriteInternalServerErrorResponse(w, "Failed to create user")
		return
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{"user": user})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.UserLoginRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		utils.WriteBadRequestResponse(w, "email and password are required")
		return
	}

	user, err := h.db.GetUserByEmail(email)
	if err != nil || !utils.CheckPassword(user.Password, req.Password) {
		// One message for unknown email and wrong password
		utils.WriteUnauthorizedResponse(w, "Invalid credentials")
		return
	}
	if !user.IsActive {
		utils.WriteUnauthorizedResponse(w, "Account is deactivated")
		return
	}

	jwtService := utils.NewJWTService(h.config.JWTSecret)
	accessToken, refreshToken, expiresIn, err := jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to issue tokens")
		return
	}

	utils.WriteSuccessResponse(w, models.UserLoginResponse{
		User:         *user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

// RefreshToken handles POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshTokenRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		utils.WriteBadRequestResponse(w, "refresh_token is required")
		return
	}

	jwtService := utils.NewJWTService(h.config.JWTSecret)
	accessToken, expiresIn, err := jwtService.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid or expired refresh token")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"access_token": accessToken,
		"expires_in":   expiresIn,
	})
}

// Profile handles GET /api/user/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"user": user})
}

// DeactivateAccount handles DELETE /api/user/account. Accounts are never
// hard-deleted; the record stays and logins stop working.
func (h *AuthHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	if err := h.db.DeactivateUser(user.ID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to deactivate account")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"deactivated": true})
}

// HealthCheck handles GET /
func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := h.db.HealthCheck(); err != nil {
		status = "degraded"
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"status":      status,
		"environment": h.config.Environment,
		"time":        time.Now().Format(time.RFC3339),
	})
}
