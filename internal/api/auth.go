package api

import (
	"landestate/internal/config"     // Application configuration
	"landestate/internal/domain"     // Importing domain models
	"landestate/internal/metrics"    // Login counters
	"landestate/internal/middleware" // Request-scoped logger
	"landestate/internal/queue"      // Event publishing
	"landestate/internal/utils"      // Utility functions
	"net/http"                       // HTTP status codes
	"time"                           // Token lifetimes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Reset tokens
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// resetTokenTTL is how long a password reset link stays valid
const resetTokenTTL = time.Hour

// SignupRequest is the body of a landlord registration
type SignupRequest struct {
	Name     string `json:"name" binding:"required,personname"`     // Display name
	Email    string `json:"email" binding:"required,email,max=255"` // Login email
	Password string `json:"password" binding:"required,password"`   // Plain password
	Phone    string `json:"phone" binding:"omitempty,phone"`        // Optional phone
	Address  string `json:"address" binding:"max=255"`              // Optional address
}

// LoginRequest is the body of both login endpoints
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login email
	Password string `json:"password" binding:"required"` // Plain password
}

// ForgotPasswordRequest is the body of a reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// ResetPasswordRequest is accepted as JSON or as the HTML form
type ResetPasswordRequest struct {
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// issueToken signs a token for the participant using the configured lifetime
func issueToken(cfg *config.Config, p domain.Participant, email, name string) (string, error) {
	return utils.GenerateJWT(p, email, name, cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
}

// SignupHandler registers a landlord account and logs it in
func SignupHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if !bindJSON(c, &req) {
			return
		}
		email := domain.NormalizeEmail(req.Email)
		// Reject duplicate emails up front for a clear message
		var count int64
		if err := db.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			serverError(c, "Failed to create account", err, nil)
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		user := domain.User{
			Name:    utils.Sanitize(req.Name),
			Email:   email,
			Phone:   utils.Sanitize(req.Phone),
			Address: utils.Sanitize(req.Address),
		}
		if err := user.SetPassword(req.Password); err != nil {
			serverError(c, "Failed to create account", err, nil)
			return
		}
		if err := db.Create(&user).Error; err != nil {
			if isDuplicate(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
				return
			}
			serverError(c, "Failed to create account", err, nil)
			return
		}
		token, err := issueToken(cfg, user.Participant(), user.Email, user.Name)
		if err != nil {
			serverError(c, "Failed to generate token", err, logrus.Fields{"user_id": user.ID})
			return
		}
		logrus.WithField("user_id", user.ID).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
	}
}

// UserLoginHandler authenticates a landlord: unknown email is 404, wrong password is 401
func UserLoginHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		var user domain.User
		if err := db.Where("email = ?", domain.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
			if isNotFound(err) {
				metrics.RecordLogin(string(domain.KindUser), "not_found")
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			serverError(c, "Login failed", err, nil)
			return
		}
		if !user.CheckPassword(req.Password) {
			metrics.RecordLogin(string(domain.KindUser), "bad_password")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
			return
		}
		token, err := issueToken(cfg, user.Participant(), user.Email, user.Name)
		if err != nil {
			serverError(c, "Failed to generate token", err, logrus.Fields{"user_id": user.ID})
			return
		}
		metrics.RecordLogin(string(domain.KindUser), "success")
		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}

// EmployeeLoginHandler authenticates an employee; unknown email and wrong password look the same
func EmployeeLoginHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		var employee domain.Employee
		err := db.Where("email = ?", domain.NormalizeEmail(req.Email)).First(&employee).Error
		if err != nil && !isNotFound(err) {
			serverError(c, "Login failed", err, nil)
			return
		}
		if err != nil || !employee.CheckPassword(req.Password) {
			metrics.RecordLogin(string(domain.KindEmployee), "bad_credentials")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		if !employee.IsActive {
			metrics.RecordLogin(string(domain.KindEmployee), "inactive")
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
			return
		}
		token, err := issueToken(cfg, employee.Participant(), employee.Email, employee.Name)
		if err != nil {
			serverError(c, "Failed to generate token", err, logrus.Fields{"employee_id": employee.ID})
			return
		}
		metrics.RecordLogin(string(domain.KindEmployee), "success")
		c.JSON(http.StatusOK, gin.H{"token": token, "employee": employee})
	}
}

// ForgotPasswordHandler stores a reset token and publishes the reset link.
// The answer is the same whether or not the email is registered.
func ForgotPasswordHandler(db *gorm.DB, pub queue.Publisher, cfg *config.Config) gin.HandlerFunc {
	const reply = "If the email is registered, a password reset link has been sent"
	return func(c *gin.Context) {
		var req ForgotPasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		var user domain.User
		if err := db.Where("email = ?", domain.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
			if isNotFound(err) {
				c.JSON(http.StatusOK, gin.H{"message": reply})
				return
			}
			serverError(c, "Failed to process request", err, nil)
			return
		}
		token := uuid.NewString()
		expiry := time.Now().UTC().Add(resetTokenTTL)
		if err := db.Model(&user).Updates(map[string]any{"reset_token": token, "reset_token_expiry": expiry}).Error; err != nil {
			serverError(c, "Failed to process request", err, logrus.Fields{"user_id": user.ID})
			return
		}
		event := queue.NewEvent(queue.EventPasswordResetRequested, queue.PasswordReset{
			Email:     user.Email,
			Name:      user.Name,
			ResetURL:  cfg.PublicURL + "/api/users/reset-password/" + token,
			ExpiresAt: expiry,
		})
		if err := pub.Publish(c.Request.Context(), user.Email, event); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).Error("Failed to publish reset event")
		}
		c.JSON(http.StatusOK, gin.H{"message": reply})
	}
}

// findByResetToken loads the user owning a still-valid reset token
func findByResetToken(db *gorm.DB, token string) (*domain.User, error) {
	var user domain.User
	if err := db.Where("reset_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

// ResetPasswordFormHandler renders the HTML reset form for a valid token
func ResetPasswordFormHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if _, err := findByResetToken(db, token); err != nil {
			if !isNotFound(err) {
				middleware.Logger(c).WithField("error", err.Error()).Error("Failed to look up reset token")
			}
			c.HTML(http.StatusBadRequest, "reset_result.html", gin.H{
				"Title":   "Link expired",
				"Message": "This password reset link is invalid or has expired. Please request a new one.",
			})
			return
		}
		c.HTML(http.StatusOK, "reset_form.html", gin.H{"Token": token})
	}
}

// ResetPasswordHandler sets a new password from the form or a JSON body
func ResetPasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		asJSON := c.ContentType() == gin.MIMEJSON
		fail := func(status int, message string) {
			if asJSON {
				c.JSON(status, gin.H{"error": message})
				return
			}
			if status == http.StatusBadRequest && message != invalidResetLink {
				c.HTML(status, "reset_form.html", gin.H{"Token": token, "Error": message})
				return
			}
			c.HTML(status, "reset_result.html", gin.H{"Title": "Password not changed", "Message": message})
		}

		var req ResetPasswordRequest
		if err := c.ShouldBind(&req); err != nil {
			fail(http.StatusBadRequest, "Invalid request")
			return
		}
		if !utils.IsValidPassword(req.Password) {
			fail(http.StatusBadRequest, "Password must be 8-72 characters and contain a letter and a digit")
			return
		}
		if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
			fail(http.StatusBadRequest, "Passwords do not match")
			return
		}
		user, err := findByResetToken(db, token)
		if err != nil {
			if isNotFound(err) {
				fail(http.StatusBadRequest, invalidResetLink)
				return
			}
			middleware.Logger(c).WithField("error", err.Error()).Error("Failed to look up reset token")
			fail(http.StatusInternalServerError, "Failed to reset password")
			return
		}
		if err := user.SetPassword(req.Password); err != nil {
			middleware.Logger(c).WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).Error("Failed to hash password")
			fail(http.StatusInternalServerError, "Failed to reset password")
			return
		}
		user.ResetToken = nil
		user.ResetTokenExpiry = nil
		if err := db.Save(user).Error; err != nil {
			middleware.Logger(c).WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).Error("Failed to reset password")
			fail(http.StatusInternalServerError, "Failed to reset password")
			return
		}
		logrus.WithField("user_id", user.ID).Info("Password reset")
		if asJSON {
			c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
			return
		}
		c.HTML(http.StatusOK, "reset_result.html", gin.H{"Title": "Password updated", "Message": "You can now log in with your new password."})
	}
}

const invalidResetLink = "This password reset link is invalid or has expired"
