package products

import (
	"net/http"
	"strconv"
	"time"

	"contest-app/database"
	"contest-app/internal/api/response"
	"contest-app/internal/domain/products"
	"contest-app/internal/domain/votes"

	"github.com/gin-gonic/gin"
)

type productInput struct {
	ProductName  string  `json:"product_name" binding:"required"`
	BrandName    string  `json:"brand_name" binding:"required"`
	Model        string  `json:"model"`
	Size         string  `json:"size"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	ProductImage *string `json:"product_image"`
	IsActive     *bool   `json:"is_active"`
}

// POST /admin/products
func Store(c *gin.Context) {
	var body productInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing or invalid product fields")
		return
	}

	p := products.Product{
		ProductName:  body.ProductName,
		BrandName:    body.BrandName,
		Model:        body.Model,
		Size:         body.Size,
		Description:  body.Description,
		Price:        body.Price,
		ProductImage: body.ProductImage,
		IsActive:     true,
	}
	if body.IsActive != nil {
		p.IsActive = *body.IsActive
	}

	if err := database.DB.Create(&p).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to create product")
		return
	}

	response.Success(c, http.StatusCreated, "Product created successfully.", gin.H{"product": p})
}

// GET /admin/products
func Index(c *gin.Context) {
	var list []products.Product
	if err := database.DB.Order("created_at DESC").Find(&list).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load products")
		return
	}

	response.Success(c, http.StatusOK, "Products retrieved successfully.", gin.H{"products": list})
}

// GET /products/:id
func Show(c *gin.Context) {
	p, ok := lookup(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, "Product retrieved successfully.", gin.H{"product": p})
}

// PUT /admin/products/:id
func Update(c *gin.Context) {
	p, ok := lookup(c)
	if !ok {
		return
	}

	var body productInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing or invalid product fields")
		return
	}

	p.ProductName = body.ProductName
	p.BrandName = body.BrandName
	p.Model = body.Model
	p.Size = body.Size
	p.Description = body.Description
	p.Price = body.Price
	if body.ProductImage != nil {
		p.ProductImage = body.ProductImage
	}
	if body.IsActive != nil {
		p.IsActive = *body.IsActive
	}

	if err := database.DB.Save(p).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to update product")
		return
	}

	response.Success(c, http.StatusOK, "Product updated successfully.", gin.H{"product": p})
}

// DELETE /admin/products/:id
func Destroy(c *gin.Context) {
	p, ok := lookup(c)
	if !ok {
		return
	}

	if err := database.DB.Delete(p).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	response.Success(c, http.StatusOK, "Product deleted successfully.", gin.H{"product_id": p.ID})
}

// GET /active-products
func ActiveProducts(c *gin.Context) {
	var list []products.Product
	if err := database.DB.Where("is_active = ?", true).Order("created_at DESC").Find(&list).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load products")
		return
	}

	response.Success(c, http.StatusOK, "Active products retrieved successfully.", gin.H{"products": list})
}

// POST /products/:id/vote
// One vote per user per calendar month, any product.
func Vote(c *gin.Context) {
	p, ok := lookup(c)
	if !ok {
		return
	}
	if !p.IsActive {
		response.Error(c, http.StatusBadRequest, "This product is not part of the current contest")
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var existing int64
	if err := database.DB.Model(&votes.Vote{}).
		Where("user_id = ? AND created_at >= ?", userID, monthStart).
		Count(&existing).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to check votes")
		return
	}
	if existing > 0 {
		response.Error(c, http.StatusConflict, "You have already voted this month")
		return
	}

	v := votes.Vote{UserID: userID, ProductID: p.ID}
	if err := database.DB.Create(&v).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	response.Success(c, http.StatusCreated, "Vote recorded successfully.", gin.H{
		"vote_id":    v.ID,
		"product_id": p.ID,
	})
}

func lookup(c *gin.Context) (*products.Product, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "Invalid product id")
		return nil, false
	}

	var p products.Product
	if err := database.DB.First(&p, uint(id)).Error; err != nil {
		response.Error(c, http.StatusNotFound, "Product not found")
		return nil, false
	}
	return &p, true
}
