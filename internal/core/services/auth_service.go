package services

import (
	"context"
	"errors"
	"log"
	"time"

	"smartlocker/internal/adapters/persistence/models"
	"smartlocker/internal/adapters/persistence/repositories"
	"smartlocker/internal/config"
	"smartlocker/internal/core/domain"
	"smartlocker/internal/pkg/jwt"
	"smartlocker/internal/pkg/phone"
	"smartlocker/internal/pkg/token"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidPhone      = errors.New("invalid phone number format")
	ErrUserNotRegistered = errors.New("phone number not registered")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidOTP        = errors.New("verification id is not valid")
	ErrOTPExpired        = errors.New("otp has expired")
	ErrOTPMismatch       = errors.New("otp code is not correct")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenRevoked      = errors.New("token revoked")
)

// AuthService is the identity & session service: phone-number login via
// one-time codes, role resolution, and bearer session credentials.
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	otpService       *OTPService
	notifyService    *NotifyService
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	otpService *OTPService,
	notifyService *NotifyService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		otpService:       otpService,
		notifyService:    notifyService,
		cfg:              cfg,
	}
}

// OTPChallenge represents an issued login OTP
type OTPChallenge struct {
	VerificationID string    `json:"verification_id"`
	ExpiresAt      time.Time `json:"expires_at"`
	// DevCode carries the code in dev mode only (SMS is simulated)
	DevCode string `json:"otp_code,omitempty"`
}

// RegisterInput represents registration input
type RegisterInput struct {
	PhoneNumber    string `json:"phone_number"`
	FullName       string `json:"full_name"`
	Apartment      string `json:"apartment"`
	VerificationID string `json:"verification_id"`
	OTPCode        string `json:"otp_code"`
}

// LoginInput represents login input
type LoginInput struct {
	VerificationID string `json:"verification_id"`
	OTPCode        string `json:"otp_code"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// RequestOTP issues a login OTP for a phone number. The code itself is
// delivered out-of-band (simulated SMS); only dev mode echoes it back.
func (s *AuthService) RequestOTP(ctx context.Context, phoneNumber string) (*OTPChallenge, error) {
	if !phone.IsValid(phoneNumber) {
		return nil, ErrInvalidPhone
	}
	norm := phone.Normalize(phoneNumber)

	otp, err := s.otpService.Issue(ctx, norm, domain.PurposeLogin, s.cfg.Locker.OTPExpiry)
	if err != nil {
		return nil, err
	}

	s.notifyService.SendLoginOTP(norm, otp.Code, otp.ExpiresAt)

	challenge := &OTPChallenge{
		VerificationID: otp.ID,
		ExpiresAt:      otp.ExpiresAt,
	}
	if s.cfg.IsDev() {
		challenge.DevCode = otp.Code
	}
	return challenge, nil
}

// Register creates a new account after OTP verification. The credential
// is bound to a subject phone, so the registered phone must be the one
// the code was issued for.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	if !phone.IsValid(input.PhoneNumber) {
		return nil, ErrInvalidPhone
	}
	norm := phone.Normalize(input.PhoneNumber)

	subject, err := s.verifyOTP(ctx, input.VerificationID, input.OTPCode)
	if err != nil {
		return nil, err
	}
	if subject != norm {
		return nil, ErrOTPMismatch
	}

	exists, err := s.userRepo.Exists(ctx, norm)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	// Role is derived once at creation from the admin allow-list and is
	// immutable thereafter
	role := string(domain.RoleResident)
	if s.cfg.IsAdminPhone(norm) {
		role = string(domain.RoleAdmin)
	}

	user := &models.User{
		PhoneNumber: norm,
		FullName:    input.FullName,
		Apartment:   input.Apartment,
		Role:        role,
		LastLogin:   time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user.PhoneNumber, role)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.PhoneNumber, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s (%s)", user.FullName, user.PhoneNumber)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login verifies a login OTP and issues a session for the registered
// identity the code was bound to
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	subject, err := s.verifyOTP(ctx, input.VerificationID, input.OTPCode)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByPhone(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotRegistered
		}
		return nil, err
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.PhoneNumber, now); err != nil {
		return nil, err
	}
	user.LastLogin = now

	role := s.resolveRole(user)

	tokens, err := s.generateTokens(user.PhoneNumber, role)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.PhoneNumber, tokens.RefreshToken); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	resp.Role = role

	log.Printf("✅ User logged in: %s", user.PhoneNumber)

	return &AuthResponse{
		User:         resp,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RefreshToken rotates the refresh token and issues a new access token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	tokenHash := token.Hash(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	user, err := s.userRepo.GetByPhone(ctx, claims.PhoneNumber)
	if err != nil {
		return nil, ErrUserNotRegistered
	}

	// Token rotation: the presented refresh token is dead after one use
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	role := s.resolveRole(user)

	tokens, err := s.generateTokens(user.PhoneNumber, role)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.PhoneNumber, tokens.RefreshToken); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	resp.Role = role

	return &AuthResponse{
		User:         resp,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := token.Hash(refreshToken)
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}
	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes every session for a phone number
func (s *AuthService) LogoutAll(ctx context.Context, phoneNumber string) error {
	if err := s.refreshTokenRepo.RevokeAllByPhone(ctx, phoneNumber); err != nil {
		return err
	}
	log.Printf("✅ All sessions revoked for: %s", phoneNumber)
	return nil
}

// GetUserByPhone gets a user by normalized phone number
func (s *AuthService) GetUserByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	return s.userRepo.GetByPhone(ctx, phoneNumber)
}

// verifyOTP translates credential store failures into auth errors
func (s *AuthService) verifyOTP(ctx context.Context, verificationID, code string) (string, error) {
	if verificationID == "" || code == "" {
		return "", ErrInvalidOTP
	}
	subject, err := s.otpService.Verify(ctx, verificationID, code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return "", ErrInvalidOTP
		case errors.Is(err, domain.ErrExpired):
			return "", ErrOTPExpired
		case errors.Is(err, domain.ErrMismatch):
			return "", ErrOTPMismatch
		default:
			return "", err
		}
	}
	return subject, nil
}

// resolveRole applies allow-list precedence: a phone on the admin
// allow-list is admin no matter what the stored role says
func (s *AuthService) resolveRole(user *models.User) string {
	if s.cfg.IsAdminPhone(user.PhoneNumber) {
		return string(domain.RoleAdmin)
	}
	if user.Role != "" {
		return user.Role
	}
	return string(domain.RoleResident)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(phoneNumber, role string) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		phoneNumber,
		role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		phoneNumber,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token hash in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, phoneNumber, refreshToken string) error {
	rt := &models.RefreshToken{
		PhoneNumber: phoneNumber,
		TokenHash:   token.Hash(refreshToken),
		ExpiresAt:   jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	return s.refreshTokenRepo.Create(ctx, rt)
}
