package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/emilythestrangee/reddit-companion/backend/internal/middleware"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
	"github.com/emilythestrangee/reddit-companion/backend/internal/store"
)

// reddit access tokens live for one hour
const accessTokenLifetime = time.Hour

type AuthHandler struct {
	*base
}

// Register links a reddit account to a companion login.
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	username := strings.TrimPrefix(strings.TrimSpace(input.Username), "u/")

	taken, err := h.Store.UsernameTaken(ctx, username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check username"})
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	acct := models.Account{
		Username:             username,
		Password:             string(hashedPassword),
		Phone:                strings.TrimSpace(input.Phone),
		RefreshToken:         input.RefreshToken,
		AccessToken:          input.AccessToken,
		NotificationsEnabled: true,
	}
	if input.AccessToken != "" {
		acct.TokenExpiry = time.Now().Add(accessTokenLifetime)
	}

	if err := h.Store.CreateAccount(ctx, &acct); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	tokenString, err := middleware.IssueToken(h.JWTSecret, &acct)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	h.Log.WithField("account", acct.Username).Info("👤 Account registered")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account registered successfully",
		"token":   tokenString,
		"account": acct,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acct, err := h.Store.AccountByUsername(c.Request.Context(), input.Username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.Log.WithError(err).Error("login lookup failed")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := middleware.IssueToken(h.JWTSecret, acct)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   tokenString,
		"account": acct,
	})
}

// GetMe returns the current authenticated account
func (h *AuthHandler) GetMe(c *gin.Context) {
	acct, ok := h.account(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, acct)
}

// UpdateSettings changes the phone number and notification switch.
func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	var input models.SettingsRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	acct, ok := h.account(c)
	if !ok {
		return
	}

	if input.Phone != nil {
		acct.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.NotificationsEnabled != nil {
		acct.NotificationsEnabled = *input.NotificationsEnabled
	}
	if err := h.Store.UpdateSettings(c.Request.Context(), acct); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, acct)
}
