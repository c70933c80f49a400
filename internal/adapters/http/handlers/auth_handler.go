package handlers

import (
	"errors"
	"strings"
	"time"

	"smartlocker/internal/adapters/http/middleware"
	"smartlocker/internal/config"
	"smartlocker/internal/core/services"
	"smartlocker/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// RequestOTPRequest represents the OTP issuance request body
type RequestOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	PhoneNumber    string `json:"phone_number"`
	FullName       string `json:"full_name"`
	Apartment      string `json:"apartment"`
	VerificationID string `json:"verification_id"`
	OTPCode        string `json:"otp_code"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	VerificationID string `json:"verification_id"`
	OTPCode        string `json:"otp_code"`
}

// RequestOTP handles login OTP issuance
// @Summary Request login OTP
// @Description Issue a one-time login code for a phone number (delivered via SMS)
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RequestOTPRequest true "Phone number"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/otp/request [post]
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req RequestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.PhoneNumber == "" {
		return response.BadRequest(c, "Phone number is required")
	}

	challenge, err := h.authService.RequestOTP(c.Context(), strings.TrimSpace(req.PhoneNumber))
	if err != nil {
		if errors.Is(err, services.ErrInvalidPhone) {
			return response.BadRequest(c, "Invalid phone number format")
		}
		return response.InternalServerError(c, "Failed to send OTP")
	}

	return response.Success(c, "OTP sent successfully", challenge)
}

// Register handles user registration
// @Summary Register new user
// @Description Register a new resident after OTP verification
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.PhoneNumber == "" {
		return response.BadRequest(c, "Phone number is required")
	}
	if req.FullName == "" {
		return response.BadRequest(c, "Full name is required")
	}
	if req.VerificationID == "" || req.OTPCode == "" {
		return response.BadRequest(c, "Verification id and OTP code are required")
	}

	input := &services.RegisterInput{
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		FullName:       strings.TrimSpace(req.FullName),
		Apartment:      strings.TrimSpace(req.Apartment),
		VerificationID: req.VerificationID,
		OTPCode:        req.OTPCode,
	}

	result, err := h.authService.Register(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPhone):
			return response.BadRequest(c, "Invalid phone number format")
		case errors.Is(err, services.ErrInvalidOTP):
			return response.BadRequest(c, "Verification id is not valid")
		case errors.Is(err, services.ErrOTPExpired):
			return response.Gone(c, "OTP has expired")
		case errors.Is(err, services.ErrOTPMismatch):
			return response.BadRequest(c, "OTP code is not correct")
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.Conflict(c, "User already exists")
		default:
			return response.InternalServerError(c, "Failed to register user")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Created(c, "User registered successfully", fiber.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// Login handles OTP login
// @Summary Login with OTP
// @Description Verify a login OTP and issue session tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "OTP verification"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.VerificationID == "" || req.OTPCode == "" {
		return response.BadRequest(c, "Verification id and OTP code are required")
	}

	input := &services.LoginInput{
		VerificationID: req.VerificationID,
		OTPCode:        req.OTPCode,
	}

	result, err := h.authService.Login(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOTP):
			return response.BadRequest(c, "Verification id is not valid")
		case errors.Is(err, services.ErrOTPExpired):
			return response.Gone(c, "OTP has expired")
		case errors.Is(err, services.ErrOTPMismatch):
			return response.BadRequest(c, "OTP code is not correct")
		case errors.Is(err, services.ErrUserNotRegistered):
			return response.NotFound(c, "Phone number not registered")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Login successful", fiber.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Refresh access token using refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	result, err := h.authService.RefreshToken(c.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token expired, please login again")
		case errors.Is(err, services.ErrTokenRevoked):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token revoked, please login again")
		case errors.Is(err, services.ErrInvalidToken):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Invalid refresh token")
		case errors.Is(err, services.ErrUserNotRegistered):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Phone number not registered")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Token refreshed successfully", fiber.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout user and revoke refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken != "" {
		_ = h.authService.Logout(c.Context(), refreshToken)
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll handles logout from all devices
// @Summary Logout from all devices
// @Description Revoke all refresh tokens for the caller
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	phoneNumber, ok := middleware.CallerPhone(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.LogoutAll(c.Context(), phoneNumber); err != nil {
		return response.InternalServerError(c, "Failed to logout from all devices")
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out from all devices", nil)
}

// Me returns the current user info
// @Summary Get current user
// @Description Get the currently authenticated user's information
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	phoneNumber, ok := middleware.CallerPhone(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.authService.GetUserByPhone(c.Context(), phoneNumber)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Now().Add(-1 * time.Hour),
			Secure:   h.cfg.Cookie.Secure,
			HTTPOnly: true,
			SameSite: h.cfg.Cookie.SameSite,
			Domain:   h.cfg.Cookie.Domain,
		})
	}
}
