package votes

import (
	"encoding/csv"
	"log"
	"net/http"
	"strconv"
	"time"

	"contest-app/database"
	"contest-app/internal/api/auth"
	"contest-app/internal/api/response"
	"contest-app/internal/domain/votes"

	"github.com/gin-gonic/gin"
)

// GET /votes/history
func VotingHistory(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var list []votes.Vote
	if err := database.DB.
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load voting history")
		return
	}

	response.Success(c, http.StatusOK, "Voting history retrieved successfully.", gin.H{"votes": list})
}

// GET /admin/votes?month=8&year=2026
// Defaults to the current month when no filter is given.
func Index(c *gin.Context) {
	start, end, ok := monthWindow(c)
	if !ok {
		return
	}

	var list []votes.Vote
	if err := database.DB.
		Preload("User").
		Preload("Product").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load votes")
		return
	}

	response.Success(c, http.StatusOK, "Votes retrieved successfully.", gin.H{
		"votes": list,
		"month": int(start.Month()),
		"year":  start.Year(),
	})
}

// GET /admin/votes/total-voters
func TotalVoters(c *gin.Context) {
	start, end, ok := monthWindow(c)
	if !ok {
		return
	}

	var total int64
	if err := database.DB.Model(&votes.Vote{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Distinct("user_id").
		Count(&total).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to count voters")
		return
	}

	response.Success(c, http.StatusOK, "Total voters retrieved successfully.", gin.H{
		"total_voters": total,
		"month":        int(start.Month()),
		"year":         start.Year(),
	})
}

// PUT /admin/votes/:id/winner
// Marks one vote as the month's winner; a month can have only one.
func MakeWinner(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "Invalid vote id")
		return
	}

	var v votes.Vote
	if err := database.DB.Preload("User").Preload("Product").First(&v, uint(id)).Error; err != nil {
		response.Error(c, http.StatusNotFound, "Vote not found")
		return
	}

	monthStart := time.Date(v.CreatedAt.Year(), v.CreatedAt.Month(), 1, 0, 0, 0, 0, v.CreatedAt.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	var winners int64
	if err := database.DB.Model(&votes.Vote{}).
		Where("is_winner = ? AND created_at >= ? AND created_at < ?", true, monthStart, monthEnd).
		Count(&winners).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to check existing winner")
		return
	}
	if winners > 0 {
		response.Error(c, http.StatusConflict, "A winner has already been selected for this month")
		return
	}

	if err := database.DB.Model(&v).Update("is_winner", true).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to mark winner")
		return
	}

	if err := auth.SendWinnerEmail(v.User.Email, v.User.FirstName, v.Product.ProductName); err != nil {
		log.Println("winner email failed:", err)
	}

	response.Success(c, http.StatusOK, "Winner selected successfully.", gin.H{
		"vote_id":    v.ID,
		"user_id":    v.UserID,
		"product_id": v.ProductID,
	})
}

// GET /admin/votes/winners
func Winners(c *gin.Context) {
	var list []votes.Vote
	if err := database.DB.
		Preload("User").
		Preload("Product").
		Where("is_winner = ?", true).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load winners")
		return
	}

	response.Success(c, http.StatusOK, "Winners retrieved successfully.", gin.H{"winners": list})
}

// GET /admin/votes/winners/export
func ExportWinners(c *gin.Context) {
	var list []votes.Vote
	if err := database.DB.
		Preload("User").
		Preload("Product").
		Where("is_winner = ?", true).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load winners")
		return
	}

	writeVotesCSV(c, "winners.csv", list)
}

// GET /admin/votes/export
func ExportVotes(c *gin.Context) {
	start, end, ok := monthWindow(c)
	if !ok {
		return
	}

	var list []votes.Vote
	if err := database.DB.
		Preload("User").
		Preload("Product").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at").
		Find(&list).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to load votes")
		return
	}

	writeVotesCSV(c, "votes.csv", list)
}

func writeVotesCSV(c *gin.Context, filename string, list []votes.Vote) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Vote ID", "First Name", "Last Name", "Email", "Product", "Brand", "Winner", "Voted At"})
	for _, v := range list {
		_ = w.Write([]string{
			strconv.FormatUint(uint64(v.ID), 10),
			v.User.FirstName,
			v.User.LastName,
			v.User.Email,
			v.Product.ProductName,
			v.Product.BrandName,
			strconv.FormatBool(v.IsWinner),
			v.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
}

// monthWindow parses optional month/year query params into a [start, end)
// range, defaulting to the current month.
func monthWindow(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	if q := c.Query("month"); q != "" {
		m, err := strconv.Atoi(q)
		if err != nil || m < 1 || m > 12 {
			response.Error(c, http.StatusBadRequest, "Invalid month")
			return time.Time{}, time.Time{}, false
		}
		month = m
	}
	if q := c.Query("year"); q != "" {
		y, err := strconv.Atoi(q)
		if err != nil || y < 2000 || y > 2200 {
			response.Error(c, http.StatusBadRequest, "Invalid year")
			return time.Time{}, time.Time{}, false
		}
		year = y
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0), true
}
