package users

import (
	"net/http"

	"contest-app/database"
	"contest-app/internal/api/response"
	"contest-app/internal/domain/billing"
	"contest-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type ProfileDTO struct {
	ID           uint    `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	Country      string  `json:"country"`
	City         string  `json:"city"`
	ZipCode      string  `json:"zip_code"`
	Address      string  `json:"address"`
	ProfileImage *string `json:"profile_image,omitempty"`
	Status       string  `json:"status"`
	IsApproved   bool    `json:"is_approved"`
}

func buildProfileDTO(u *users.User) ProfileDTO {
	return ProfileDTO{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Country:      u.Country,
		City:         u.City,
		ZipCode:      u.ZipCode,
		Address:      u.Address,
		ProfileImage: u.ProfileImage,
		Status:       u.Status,
		IsApproved:   u.IsApproved,
	}
}

// GET /user
func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		response.Error(c, http.StatusNotFound, "User not found")
		return
	}

	var rec billing.PaymentRecord
	var subscription gin.H
	if err := database.DB.Where("user_id = ?", user.ID).First(&rec).Error; err == nil {
		subscription = gin.H{
			"status":          string(rec.Status),
			"subscription_id": rec.SubscriptionID,
		}
	}

	response.Success(c, http.StatusOK, "Profile retrieved successfully.", gin.H{
		"user":         buildProfileDTO(&user),
		"subscription": subscription,
	})
}

// PUT /user
func UpdateProfile(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		FirstName    *string `json:"first_name"`
		LastName     *string `json:"last_name"`
		Country      *string `json:"country"`
		City         *string `json:"city"`
		ZipCode      *string `json:"zip_code"`
		Address      *string `json:"address"`
		ProfileImage *string `json:"profile_image"`
		OldPassword  *string `json:"old_password"`
		NewPassword  *string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		response.Error(c, http.StatusNotFound, "User not found")
		return
	}

	updates := map[string]interface{}{}
	if body.FirstName != nil {
		updates["first_name"] = *body.FirstName
	}
	if body.LastName != nil {
		updates["last_name"] = *body.LastName
	}
	if body.Country != nil {
		updates["country"] = *body.Country
	}
	if body.City != nil {
		updates["city"] = *body.City
	}
	if body.ZipCode != nil {
		updates["zip_code"] = *body.ZipCode
	}
	if body.Address != nil {
		updates["address"] = *body.Address
	}
	if body.ProfileImage != nil {
		updates["profile_image"] = *body.ProfileImage
	}

	// Password change requires the current one to match.
	if body.NewPassword != nil {
		if user.Password == nil || body.OldPassword == nil {
			response.Error(c, http.StatusBadRequest, "Old password is required to set a new password")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(*body.OldPassword)); err != nil {
			response.Error(c, http.StatusBadRequest, "Old password does not match")
			return
		}
		if len(*body.NewPassword) < 8 {
			response.Error(c, http.StatusBadRequest, "New password must be at least 8 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "Failed to update password")
			return
		}
		updates["password"] = string(hash)
	}

	if len(updates) == 0 {
		response.Success(c, http.StatusOK, "Nothing to update.", gin.H{"user": buildProfileDTO(&user)})
		return
	}

	if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	if err := database.DB.First(&user, userID).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to reload profile")
		return
	}

	response.Success(c, http.StatusOK, "Profile updated successfully.", gin.H{"user": buildProfileDTO(&user)})
}
