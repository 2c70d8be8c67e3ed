package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"contest-app/database"
	"contest-app/internal/api/response"
	"contest-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	otpType     = "password_reset_otp"
	otpLifetime = 10 * time.Minute
)

func generateOtp() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing means the process is in real trouble anyway
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// ForgotPassword sends a 6-digit OTP to the user's email.
func ForgotPassword(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid email")
		return
	}

	var user users.User
	if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		// Don't expose whether the email exists
		response.Success(c, http.StatusOK, "If your email exists, you'll receive an OTP.", nil)
		return
	}

	// Remove any previous OTP for this user
	database.DB.Where("user_id = ? AND type = ?", user.ID, otpType).Delete(&users.VerificationToken{})

	otp := generateOtp()
	token := users.VerificationToken{
		UserID:    user.ID,
		Token:     otp,
		Type:      otpType,
		ExpiresAt: time.Now().Add(otpLifetime),
	}
	if err := database.DB.Create(&token).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to store OTP")
		return
	}

	if err := SendOtpEmail(user.Email, otp); err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to send OTP email")
		return
	}

	response.Success(c, http.StatusOK, "OTP sent to your email for password reset.", nil)
}

// VerifyOtp marks the OTP as verified; the reset itself happens in
// ResetPassword within the same validity window.
func VerifyOtp(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
		Otp   string `json:"otp" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid email or OTP")
		return
	}

	token, err := findOtp(body.Email, body.Otp)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	now := time.Now()
	if err := database.DB.Model(token).Update("verified_at", now).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to verify OTP")
		return
	}

	response.Success(c, http.StatusOK, "OTP is valid. You can now reset your password.", nil)
}

// ResetPassword sets a new password after the OTP has been verified.
func ResetPassword(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request")
		return
	}

	if !isPasswordStrong(body.Password) {
		response.Error(c, http.StatusBadRequest, "Password must be at least 8 characters with letters and numbers")
		return
	}

	var user users.User
	if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		response.Error(c, http.StatusNotFound, "User not found.")
		return
	}

	var token users.VerificationToken
	err := database.DB.
		Where("user_id = ? AND type = ? AND verified_at IS NOT NULL", user.ID, otpType).
		First(&token).Error
	if err != nil || token.ExpiresAt.Before(time.Now()) {
		response.Error(c, http.StatusBadRequest, "OTP verification is required before resetting the password.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	if err := database.DB.Model(&users.User{}).Where("id = ?", user.ID).Update("password", string(hashed)).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	// One reset per OTP
	database.DB.Delete(&token)

	response.Success(c, http.StatusOK, "Password reset successfully.", nil)
}

func findOtp(email, otp string) (*users.VerificationToken, error) {
	var user users.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	var token users.VerificationToken
	err := database.DB.
		Where("user_id = ? AND token = ? AND type = ?", user.ID, otp, otpType).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	if token.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("otp expired")
	}
	return &token, nil
}
