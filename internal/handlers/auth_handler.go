package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/gsrtc/transit-ops-backend/internal/config"
	"github.com/gsrtc/transit-ops-backend/internal/database"
	"github.com/gsrtc/transit-ops-backend/internal/middleware"
	"github.com/gsrtc/transit-ops-backend/internal/models"
	"github.com/gsrtc/transit-ops-backend/internal/services"
	"github.com/gsrtc/transit-ops-backend/internal/utils"
	"github.com/gsrtc/transit-ops-backend/pkg/jwt"
	"github.com/gsrtc/transit-ops-backend/pkg/mailer"
)

// AuthHandler serves account registration, login, token refresh and the
// password reset OTP flow
type AuthHandler struct {
	userRepo         *database.UserRepository
	sessionRepo      *database.SessionRepository
	jwtService       *jwt.Service
	otpService       *services.OTPService
	rateLimitService *services.RateLimitService
	mailGateway      mailer.Gateway
	cfg              *config.Config
	logger           *logrus.Logger
}

func NewAuthHandler(
	userRepo *database.UserRepository,
	sessionRepo *database.SessionRepository,
	jwtService *jwt.Service,
	otpService *services.OTPService,
	rateLimitService *services.RateLimitService,
	mailGateway mailer.Gateway,
	cfg *config.Config,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		userRepo:         userRepo,
		sessionRepo:      sessionRepo,
		jwtService:       jwtService,
		otpService:       otpService,
		rateLimitService: rateLimitService,
		mailGateway:      mailGateway,
		cfg:              cfg,
		logger:           logger,
	}
}

// Register creates a new console account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cfg.Security.BcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CoverImage:   req.CoverImage,
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := h.userRepo.Create(user); err != nil {
		if err == database.ErrDuplicateEmail {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	h.logger.WithField("email", user.Email).Info("Account registered")
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login authenticates an account and opens a tracked session
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.userRepo.GetByEmail(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	h.recordSession(c, user.ID)

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// recordSession stores a login session for audit. Failures are logged and
// swallowed, a session row never blocks a login.
func (h *AuthHandler) recordSession(c *gin.Context, userID uuid.UUID) {
	userAgent := utils.GetUserAgent(c)
	device := utils.ParseUserAgent(userAgent)
	ip := utils.GetRealIP(c)

	session := &models.UserSession{
		ID:             uuid.New(),
		UserID:         userID,
		DeviceType:     device.DeviceType,
		OS:             device.OS,
		Browser:        device.Browser,
		IsActive:       true,
		LastActivityAt: time.Now(),
	}
	if ip != "" {
		session.IPAddress = &ip
	}
	if userAgent != "" {
		session.UserAgent = &userAgent
	}

	if err := h.sessionRepo.Create(session); err != nil {
		h.logger.WithError(err).Warn("Failed to record login session")
	}
}

// RefreshToken exchanges a valid refresh token for a new token pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}

	// Reload the account so role changes and deletions take effect on refresh
	user, err := h.userRepo.GetByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}

	// A refresh proves the client is still active
	if err := h.sessionRepo.TouchActivityByUser(user.ID); err != nil {
		h.logger.WithError(err).Warn("Failed to touch session activity")
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// GetSessions lists the caller's active login sessions
// GET /api/v1/auth/sessions
func (h *AuthHandler) GetSessions(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessions, err := h.sessionRepo.GetActiveByUser(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// Logout deactivates the caller's tracked sessions
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.sessionRepo.DeactivateByUser(userCtx.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetProfile returns the caller's account
// GET /api/v1/auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.userRepo.GetByID(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a self-service update to the caller's account
// PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Role is deliberately absent, self-service updates cannot escalate
	update := &models.UpdateUserRequest{
		Name:       req.Name,
		Email:      req.Email,
		CoverImage: req.CoverImage,
	}

	if err := h.userRepo.Update(userCtx.UserID, update); err != nil {
		if err == database.ErrDuplicateEmail {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	user, err := h.userRepo.GetByID(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// SendOTP starts the password reset flow by emailing a one time code
// POST /api/v1/auth/send-otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req models.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := models.ValidateEmail(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ip := utils.GetRealIP(c)
	if err := h.rateLimitService.CheckOTPRateLimit(email, ip); err != nil {
		if rateLimitErr, ok := err.(*services.RateLimitError); ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      rateLimitErr.Message,
				"retryAfter": rateLimitErr.RetryAfter,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}

	user, err := h.userRepo.GetByEmail(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No account found for this email"})
		return
	}

	code, err := h.otpService.Generate(email, ip, utils.GetUserAgent(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}

	if h.cfg.Mail.Mode != "production" {
		// Dev mode skips delivery and echoes the code for manual testing
		h.logger.WithField("email", email).Info("Issued password reset OTP (dev mode)")
		c.JSON(http.StatusOK, gin.H{
			"message": "OTP generated successfully",
			"devOtp":  code,
		})
		return
	}

	messageID, err := h.mailGateway.SendOTP(email, code)
	if err != nil {
		h.logger.WithError(err).WithField("gateway", h.mailGateway.GetName()).Error("OTP delivery failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP email"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"email":     email,
		"messageId": messageID,
	}).Info("Password reset OTP sent")

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// VerifyOTP checks a password reset code
// POST /api/v1/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.otpService.Validate(email, req.OTP); err != nil {
		switch err {
		case services.ErrNoOTPFound, services.ErrOTPInvalid, services.ErrOTPExpired,
			services.ErrOTPAlreadyUsed, services.ErrMaxAttemptsExceeded:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify OTP"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully"})
}

// ResetPassword completes the reset flow. It requires a previously verified
// OTP for the email; the verification is consumed so it cannot be reused.
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.userRepo.GetByEmail(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No account found for this email"})
		return
	}

	if err := h.otpService.RequireVerified(email); err != nil {
		switch err {
		case services.ErrNoOTPFound, services.ErrOTPNotVerified, services.ErrOTPExpired:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password reset has not been verified"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		}
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cfg.Security.BcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	if err := h.userRepo.UpdatePassword(user.ID, string(hash)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	// The OTP is consumed only after the password write lands; a failed
	// write keeps the verification alive for a retry
	if err := h.otpService.Consume(email); err != nil {
		h.logger.WithError(err).Warn("Failed to consume OTP after password reset")
	}

	// Existing sessions are stale after a reset
	if err := h.sessionRepo.DeactivateByUser(user.ID); err != nil {
		h.logger.WithError(err).Warn("Failed to deactivate sessions after password reset")
	}

	h.logger.WithField("email", email).Info("Password reset completed")
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
