package auth

import (
	"net/http"
	"regexp"
	"time"

	"contest-app/config"
	"contest-app/database"
	"contest-app/internal/api/response"
	"contest-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func isEmailValid(email string) bool {
	pattern := `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`
	matched, _ := regexp.MatchString(pattern, email)
	return matched
}

func Register(c *gin.Context) {
	var input struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Country   string `json:"country" binding:"required"`
		City      string `json:"city" binding:"required"`
		ZipCode   string `json:"zip_code" binding:"required"`
		Address   string `json:"address" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		response.ErrorWith(c, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	if !isPasswordStrong(input.Password) {
		response.Error(c, http.StatusBadRequest, "Password must be at least 8 characters long and contain both letters and numbers")
		return
	}
	if !isEmailValid(input.Email) {
		response.Error(c, http.StatusBadRequest, "Invalid email format")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	hashed := string(hashedPassword)

	user := users.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Country:      input.Country,
		City:         input.City,
		ZipCode:      input.ZipCode,
		Address:      input.Address,
		Email:        input.Email,
		Password:     &hashed,
		AuthProvider: "local",
		Status:       "active",
	}

	if err := database.DB.Create(&user).Error; err != nil {
		response.ErrorWith(c, http.StatusConflict, "Email may already exist", err.Error())
		return
	}

	token, err := issueAppJWT(user)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Could not create token")
		return
	}

	response.Success(c, http.StatusOK, "User registered successfully.", gin.H{
		"token": token,
		"user":  publicUser(user),
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ErrorWith(c, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	var user users.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user.Status == "inactive" {
		response.Error(c, http.StatusForbidden, "Your account has been deactivated")
		return
	}

	if user.Password == nil || *user.Password == "" {
		response.Error(c, http.StatusUnauthorized, "This account uses Google sign-in")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	database.DB.Model(&users.User{}).Where("id = ?", user.ID).Update("last_login_at", now)

	token, err := issueAppJWT(user)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Could not create token")
		return
	}

	response.Success(c, http.StatusOK, "Logged in successfully.", gin.H{"token": token})
}

func issueAppJWT(user users.User) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})
	return t.SignedString([]byte(config.JWT_SECRET))
}

func publicUser(u users.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"email":       u.Email,
		"country":     u.Country,
		"city":        u.City,
		"zip_code":    u.ZipCode,
		"address":     u.Address,
		"status":      u.Status,
		"is_admin":    u.IsAdmin,
		"is_approved": u.IsApproved,
		"created_at":  u.CreatedAt,
	}
}
