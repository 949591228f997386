package api

import (
	"net/http" // HTTP status codes

	"campus_wallet/internal/account"    // Account operations
	"campus_wallet/internal/domain"     // Error taxonomy
	"campus_wallet/internal/middleware" // Identity from context
	"campus_wallet/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// PasswordRequest carries a new password and its confirmation
type PasswordRequest struct {
	Password        string `json:"password"`         // New password
	ConfirmPassword string `json:"confirm_password"` // Must equal password
}

// RecoveryRequest asks for a reset token
type RecoveryRequest struct {
	Email string `json:"email" binding:"required"` // Account email
}

// ResetRequest consumes a reset token
type ResetRequest struct {
	Token string `json:"token" binding:"required"` // Token from the recovery step
	PasswordRequest
}

// RegisterHandler creates a profile and its wallet
func RegisterHandler(accounts *account.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req account.RegisterInput // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		p, err := accounts.Register(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeletePrefix(c.Request.Context(), rdb, utils.AdminCachePrefix) // Invalidate admin listings
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "profile": p})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		token, err := accounts.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// SignOutHandler revokes the token used for this request
func SignOutHandler(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := accounts.SignOut(c.Request.Context(), middleware.Claims(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
	}
}

// ChangePasswordHandler sets a new password for the caller
func ChangePasswordHandler(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := accounts.ChangePassword(c.Request.Context(), middleware.Identity(c), req.Password, req.ConfirmPassword); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}

// RecoveryHandler issues a password reset token. The response is the same
// whether or not the address belongs to an account.
func RecoveryHandler(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecoveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		token, err := accounts.RequestReset(c.Request.Context(), req.Email)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := gin.H{"message": "If the account exists, a reset token has been issued"}
		if token != "" && gin.Mode() != gin.ReleaseMode {
			resp["token"] = token // No mailer outside production, hand the token back directly
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ResetPasswordHandler consumes a reset token
func ResetPasswordHandler(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := accounts.ResetPassword(c.Request.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
	}
}

// GetProfileHandler returns the caller's profile
func GetProfileHandler(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := accounts.Profile(c.Request.Context(), middleware.Identity(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": p})
	}
}

// UpdateProfileHandler saves the editable profile fields
func UpdateProfileHandler(accounts *account.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req account.ProfileInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		p, err := accounts.UpdateProfile(c.Request.Context(), middleware.Identity(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeletePrefix(c.Request.Context(), rdb, utils.AdminCachePrefix) // Invalidate admin listings
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully!", "profile": p})
	}
}

// UploadAvatarHandler stores a multipart "avatar" file as the caller's picture
func UploadAvatarHandler(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("avatar")
		if err != nil {
			respondError(c, domain.Validation("avatar file is required"))
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, domain.Validation("unreadable upload"))
			return
		}
		defer f.Close()
		url, err := accounts.UploadAvatar(c.Request.Context(), middleware.Identity(c), fh.Filename, f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"avatar_url": url})
	}
}
