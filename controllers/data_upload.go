package controllers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"dept-analytics-api/config"
	"dept-analytics-api/models"
	"dept-analytics-api/services"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps the accepted CSV size at 100MB.
const maxUploadBytes = 100 * 1024 * 1024

// maxResponseErrors caps how many row errors are echoed in the HTTP
// response. The upload log keeps a longer excerpt.
const maxResponseErrors = 50

// UploadCSV ingests one CSV file for the declared data type.
// POST /api/v1/data/upload (multipart: file, data_type)
func UploadCSV(c *gin.Context) {
	userID := c.GetInt("userID")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "파일이 제공되지 않았습니다.",
		})
		return
	}

	dataType := c.PostForm("data_type")
	if dataType == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "데이터 유형(data_type)이 제공되지 않았습니다.",
		})
		return
	}
	if !models.IsSupportedDataType(dataType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("지원하지 않는 데이터 유형: %s. (kpi, publication, project, student 중 하나)", dataType),
		})
		return
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "CSV 파일만 업로드 가능합니다.",
		})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "파일 크기는 100MB를 초과할 수 없습니다.",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   fmt.Sprintf("파일 처리 중 오류가 발생했습니다: %v", err),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   fmt.Sprintf("파일 처리 중 오류가 발생했습니다: %v", err),
		})
		return
	}

	svc := services.NewCSVIngestService(nil)
	result, err := svc.Ingest(c.Request.Context(), &services.CSVIngestInput{
		Data:       data,
		DataType:   dataType,
		UploadedBy: userID,
		FileName:   fileHeader.Filename,
	})
	if err != nil {
		var decodeErr *services.CSVDecodeError
		if errors.Is(err, services.ErrUnsupportedDataType) || errors.As(err, &decodeErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		log.Printf("CSV upload failed: file=%s type=%s user=%d err=%v", fileHeader.Filename, dataType, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   fmt.Sprintf("파일 처리 중 오류가 발생했습니다: %v", err),
		})
		return
	}

	responseErrors := result.Errors
	if len(responseErrors) > maxResponseErrors {
		responseErrors = responseErrors[:maxResponseErrors]
	}

	status := "success"
	httpStatus := http.StatusCreated
	if result.FailedRows > 0 {
		status = "partial"
		httpStatus = http.StatusOK
	}

	go notifyUploader(userID, fileHeader.Filename, result)

	c.JSON(httpStatus, gin.H{
		"success": true,
		"data": gin.H{
			"status":       status,
			"message":      fmt.Sprintf("파일 처리 완료. 성공: %d행, 실패: %d행", result.SuccessRows, result.FailedRows),
			"upload_id":    result.UploadLogID,
			"total_rows":   result.TotalRows,
			"success_rows": result.SuccessRows,
			"failed_rows":  result.FailedRows,
			"errors":       responseErrors,
		},
	})
}

// notifyUploader sends the run summary by email. Best effort only; the
// upload already committed.
func notifyUploader(userID int, fileName string, result *services.CSVIngestResult) {
	var user models.User
	if err := config.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return
	}
	if user.Email == "" {
		return
	}

	subject := fmt.Sprintf("[학과분석] 업로드 처리 완료: %s", fileName)
	body := fmt.Sprintf(
		"<p>%s 파일 처리가 완료되었습니다.</p><p>전체 %d행 / 성공 %d행 / 실패 %d행</p>",
		fileName, result.TotalRows, result.SuccessRows, result.FailedRows,
	)
	if err := config.SendMail([]string{user.Email}, subject, body); err != nil {
		log.Printf("Failed to send upload notification to %s: %v", user.Email, err)
	}
}
