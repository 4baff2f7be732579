package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/auth"
	"ongelEstate/internal/database"
)

// AuthHandler serves login and the authenticated profile endpoints.
type AuthHandler struct {
	db          *gorm.DB
	authService *auth.AuthService
	limiter     auth.LoginLimiter
}

func NewAuthHandler(db *gorm.DB, authService *auth.AuthService, limiter auth.LoginLimiter) *AuthHandler {
	return &AuthHandler{db: db, authService: authService, limiter: limiter}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string        `json:"accessToken"`
	ExpiresIn   int64         `json:"expiresIn"`
	User        database.User `json:"user"`
}

// Login exchanges credentials for an access token. Repeated failures for the
// same account are throttled via Redis.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	limiterKey := auth.LoginKey(c.ClientIP(), email)

	if h.limiter != nil {
		allowed, err := h.limiter.Allowed(ctx, limiterKey)
		if err != nil {
			// Redis being down must not lock everyone out.
			middleware.LoggerFromContext(c).Error("login limiter check failed", slog.Any("error", err))
		} else if !allowed {
			Error(c, http.StatusTooManyRequests, "too many failed login attempts, try again later")
			return
		}
	}

	var user database.User
	err := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		Internal(c, "failed to query user")
		return
	}

	// The same response for unknown accounts and wrong passwords.
	authenticated := err == nil &&
		user.IsActive &&
		auth.CheckPasswordHash(req.Password, user.PasswordHash)
	if !authenticated {
		if h.limiter != nil {
			if err := h.limiter.RecordFailure(ctx, limiterKey); err != nil {
				middleware.LoggerFromContext(c).Error("record login failure failed", slog.Any("error", err))
			}
		}
		Unauthorized(c)
		return
	}

	if h.limiter != nil {
		if err := h.limiter.Reset(ctx, limiterKey); err != nil {
			middleware.LoggerFromContext(c).Error("reset login counter failed", slog.Any("error", err))
		}
	}

	token, err := h.authService.GenerateAccessToken(user)
	if err != nil {
		middleware.LoggerFromContext(c).Error("sign token failed", slog.Any("error", err))
		Internal(c, "failed to issue token")
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: token,
		ExpiresIn:   int64(h.authService.AccessTokenTTL() / time.Second),
		User:        user,
	})
}

// Profile returns the acting user's account.
func (h *AuthHandler) Profile(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var account database.User
	if err := h.db.WithContext(c.Request.Context()).First(&account, "id = ?", user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Unauthorized(c)
			return
		}
		Internal(c, "failed to query user")
		return
	}

	c.JSON(http.StatusOK, account)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword lets the acting user rotate their own password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var account database.User
	if err := h.db.WithContext(ctx).First(&account, "id = ?", user.ID).Error; err != nil {
		Internal(c, "failed to query user")
		return
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, account.PasswordHash) {
		Unauthorized(c)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		Internal(c, "failed to hash password")
		return
	}

	if err := h.db.WithContext(ctx).Model(&account).Update("password_hash", hash).Error; err != nil {
		middleware.LoggerFromContext(c).Error("update password failed", slog.Any("error", err))
		Internal(c, "failed to update password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
