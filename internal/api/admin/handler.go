package admin

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"contest-app/database"
	"contest-app/internal/api/response"
	"contest-app/internal/domain/billing"
	"contest-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID               uint       `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	Country          string     `json:"country"`
	City             string     `json:"city"`
	Status           string     `json:"status"`
	IsApproved       bool       `json:"is_approved"`
	StripeCustomerID *string    `json:"stripe_customer_id,omitempty"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	InactiveUsers int64 `json:"inactive_users"`
	NewThisMonth  int64 `json:"new_this_month"`
}

func buildAdminUser(u users.User) AdminUser {
	return AdminUser{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		Country:          u.Country,
		City:             u.City,
		Status:           u.Status,
		IsApproved:       u.IsApproved,
		StripeCustomerID: u.StripeCustomerID,
		LastLoginAt:      u.LastLoginAt,
		CreatedAt:        u.CreatedAt,
	}
}

// GET /admin/users
func ListAllUsers(c *gin.Context) {
	var all []users.User
	if err := database.DB.Order("created_at DESC").Find(&all).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load users")
		return
	}

	list := make([]AdminUser, 0, len(all))
	for _, u := range all {
		list = append(list, buildAdminUser(u))
	}

	stats, err := computeStats()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	response.Success(c, http.StatusOK, "Users retrieved successfully.", gin.H{
		"users": list,
		"stats": stats,
	})
}

func computeStats() (*AdminStats, error) {
	var s AdminStats
	db := database.DB.Model(&users.User{})
	if err := db.Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&users.User{}).Where("status = ?", "active").Count(&s.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&users.User{}).Where("status = ?", "inactive").Count(&s.InactiveUsers).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := database.DB.Model(&users.User{}).Where("created_at >= ?", monthStart).Count(&s.NewThisMonth).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GET /admin/users/export
func ExportUsers(c *gin.Context) {
	var all []users.User
	if err := database.DB.Order("id").Find(&all).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load users")
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="users.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"ID", "First Name", "Last Name", "Email", "Country", "City", "Zip Code", "Status", "Approved", "Registered At"})
	for _, u := range all {
		_ = w.Write([]string{
			strconv.FormatUint(uint64(u.ID), 10),
			u.FirstName,
			u.LastName,
			u.Email,
			u.Country,
			u.City,
			u.ZipCode,
			u.Status,
			strconv.FormatBool(u.IsApproved),
			u.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
}

// PUT /admin/users/:id/approve
func ApproveUser(c *gin.Context) {
	user, ok := lookupUser(c)
	if !ok {
		return
	}

	if err := database.DB.Model(user).Update("is_approved", true).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to approve user")
		return
	}

	response.Success(c, http.StatusOK, "User approved successfully.", gin.H{"user_id": user.ID})
}

// PUT /admin/users/:id/status
// Toggles a user between active and inactive.
func ActiveInactive(c *gin.Context) {
	user, ok := lookupUser(c)
	if !ok {
		return
	}

	next := "inactive"
	if user.Status == "inactive" {
		next = "active"
	}

	if err := database.DB.Model(user).Update("status", next).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to update user status")
		return
	}

	response.Success(c, http.StatusOK, fmt.Sprintf("User marked %s.", next), gin.H{
		"user_id": user.ID,
		"status":  next,
	})
}

// DELETE /admin/users/:id
func DeleteUser(c *gin.Context) {
	user, ok := lookupUser(c)
	if !ok {
		return
	}

	if err := database.DB.Delete(user).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	response.Success(c, http.StatusOK, "User deleted successfully.", gin.H{"user_id": user.ID})
}

// GET /admin/payments
func ListAllPayments(c *gin.Context) {
	var records []billing.PaymentRecord
	if err := database.DB.Order("created_at DESC").Find(&records).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load payments")
		return
	}

	response.Success(c, http.StatusOK, "Payments retrieved successfully.", gin.H{"payments": records})
}

func lookupUser(c *gin.Context) (*users.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "Invalid user id")
		return nil, false
	}

	var user users.User
	if err := database.DB.First(&user, uint(id)).Error; err != nil {
		response.Error(c, http.StatusNotFound, "User not found")
		return nil, false
	}
	return &user, true
}
