package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dept-analytics-api/config"
	"dept-analytics-api/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetUploadLogs lists the caller's upload history, newest first.
// GET /api/v1/data/upload-logs?data_type=&page=&page_size=
func GetUploadLogs(c *gin.Context) {
	userID := c.GetInt("userID")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := config.DB.Model(&models.UploadLog{}).Where("uploaded_by = ?", userID)
	if dataType := c.Query("data_type"); dataType != "" {
		query = query.Where("data_type = ?", dataType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to count upload logs"})
		return
	}

	var logs []models.UploadLog
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch upload logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"logs":      logs,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// GetUploadLogDetail returns one upload log with its parsed row errors.
// Logs belonging to other users report not-found rather than forbidden.
// GET /api/v1/data/upload-logs/:id
func GetUploadLogDetail(c *gin.Context) {
	userID := c.GetInt("userID")
	logID := c.Param("id")

	var logRow models.UploadLog
	if err := config.DB.
		Where("id = ? AND uploaded_by = ?", logID, userID).
		First(&logRow).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "업로드 이력을 찾을 수 없습니다."})
		return
	}

	errorDetails := []json.RawMessage{}
	if logRow.ErrorDetails != "" {
		if err := json.Unmarshal([]byte(logRow.ErrorDetails), &errorDetails); err != nil {
			errorDetails = []json.RawMessage{}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":            logRow.ID,
			"file_name":     logRow.FileName,
			"data_type":     logRow.DataType,
			"total_rows":    logRow.TotalRows,
			"success_rows":  logRow.SuccessRows,
			"failed_rows":   logRow.FailedRows,
			"error_details": errorDetails,
			"uploaded_by":   logRow.UploadedBy,
			"created_at":    logRow.CreatedAt,
			"updated_at":    logRow.UpdatedAt,
		},
	})
}
