package community

import (
	"net/http"
	"strconv"

	"contest-app/database"
	"contest-app/internal/api/response"
	"contest-app/internal/domain/community"

	"github.com/gin-gonic/gin"
)

// GET /communities
// Public feed of the latest approved submissions.
func Index(c *gin.Context) {
	var list []community.Community
	if err := database.DB.
		Preload("User").
		Where("is_approved = ?", true).
		Order("created_at DESC").
		Limit(12).
		Find(&list).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load community posts")
		return
	}

	response.Success(c, http.StatusOK, "Community posts retrieved successfully.", gin.H{"communities": list})
}

// POST /communities
func Store(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		ProductName  string  `json:"product_name" binding:"required"`
		ProductImage *string `json:"product_image"`
		Brand        string  `json:"brand"`
		Model        string  `json:"model"`
		Description  string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing or invalid submission fields")
		return
	}

	post := community.Community{
		UserID:       userID,
		ProductName:  body.ProductName,
		ProductImage: body.ProductImage,
		Brand:        body.Brand,
		Model:        body.Model,
		Description:  body.Description,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create submission")
		return
	}

	response.Success(c, http.StatusCreated, "Submission received; pending approval.", gin.H{"community": post})
}

// PUT /admin/communities/:id/approve
func Approve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "Invalid submission id")
		return
	}

	var post community.Community
	if err := database.DB.First(&post, uint(id)).Error; err != nil {
		response.Error(c, http.StatusNotFound, "Submission not found")
		return
	}

	if err := database.DB.Model(&post).Update("is_approved", true).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to approve submission")
		return
	}

	response.Success(c, http.StatusOK, "Submission approved successfully.", gin.H{"community_id": post.ID})
}
