package controllers

import (
	"net/http"
	"strconv"
	"time"

	"dept-analytics-api/services"

	"github.com/gin-gonic/gin"
)

// Dashboard queries tolerate malformed filter values by ignoring them, so a
// bad date in the query string degrades to an unfiltered series.

func queryDate(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

func queryInt(c *gin.Context, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// GetDashboardOverview returns the four headline metric cards.
// GET /api/v1/dashboard/overview
func GetDashboardOverview(c *gin.Context) {
	svc := services.NewDashboardService(nil)
	report, err := svc.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to build overview"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// GetDashboardPerformance returns KPI series grouped for charting.
// GET /api/v1/dashboard/performance?evaluation_year=&college=&department=
func GetDashboardPerformance(c *gin.Context) {
	filters := &services.PerformanceFilters{
		EvaluationYear: queryInt(c, "evaluation_year"),
		College:        c.Query("college"),
		Department:     c.Query("department"),
	}

	svc := services.NewDashboardService(nil)
	report, err := svc.Performance(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to build performance report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// GetDashboardPapers returns publication distributions and the monthly trend.
// GET /api/v1/dashboard/papers?start_date=&end_date=&college=&department=&journal_grade=
func GetDashboardPapers(c *gin.Context) {
	filters := &services.PapersFilters{
		StartDate:    queryDate(c, "start_date"),
		EndDate:      queryDate(c, "end_date"),
		College:      c.Query("college"),
		Department:   c.Query("department"),
		JournalGrade: c.Query("journal_grade"),
	}

	svc := services.NewDashboardService(nil)
	report, err := svc.Papers(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to build papers report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// GetDashboardStudents returns enrollment distributions.
// GET /api/v1/dashboard/students?college=&department=&program_type=&academic_status=
func GetDashboardStudents(c *gin.Context) {
	filters := &services.StudentsFilters{
		College:        c.Query("college"),
		Department:     c.Query("department"),
		ProgramType:    c.Query("program_type"),
		AcademicStatus: c.Query("academic_status"),
	}

	svc := services.NewDashboardService(nil)
	report, err := svc.Students(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to build students report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// GetDashboardBudget returns budget execution series and rates.
// GET /api/v1/dashboard/budget?start_date=&end_date=&department=&funding_agency=&status=
func GetDashboardBudget(c *gin.Context) {
	filters := &services.BudgetFilters{
		StartDate:     queryDate(c, "start_date"),
		EndDate:       queryDate(c, "end_date"),
		Department:    c.Query("department"),
		FundingAgency: c.Query("funding_agency"),
		Status:        c.Query("status"),
	}

	svc := services.NewDashboardService(nil)
	report, err := svc.Budget(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to build budget report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}
