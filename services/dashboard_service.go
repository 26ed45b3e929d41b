package services

import (
	"context"
	"math"
	"sort"
	"time"

	"dept-analytics-api/config"
	"dept-analytics-api/models"

	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	if db == nil {
		db = config.DB
	}
	return &DashboardService{db: db}
}

// Filters are AND-combined. Controllers drop unparseable values before they
// reach the service, so a nil pointer or empty string means "no filter".

type PerformanceFilters struct {
	EvaluationYear *int
	College        string
	Department     string
}

type PapersFilters struct {
	StartDate    *time.Time
	EndDate      *time.Time
	College      string
	Department   string
	JournalGrade string
}

type StudentsFilters struct {
	College        string
	Department     string
	ProgramType    string
	AcademicStatus string
}

type BudgetFilters struct {
	StartDate     *time.Time
	EndDate       *time.Time
	Department    string
	FundingAgency string
	Status        string
}

type EmploymentRatePoint struct {
	Department     string  `json:"department"`
	College        string  `json:"college"`
	EmploymentRate float64 `json:"employment_rate"`
	EvaluationYear int     `json:"evaluation_year"`
}

type TechTransferPoint struct {
	EvaluationYear int     `json:"evaluation_year"`
	Department     string  `json:"department"`
	Revenue        float64 `json:"revenue"`
}

type FacultyStatusEntry struct {
	Department    string `json:"department"`
	FulltimeCount int    `json:"fulltime_count"`
	VisitingCount int    `json:"visiting_count"`
}

type ConferenceCountPoint struct {
	EvaluationYear int    `json:"evaluation_year"`
	Department     string `json:"department"`
	Count          int    `json:"count"`
}

type PerformanceReport struct {
	EmploymentRates     []EmploymentRatePoint  `json:"employment_rates"`
	TechTransferRevenue []TechTransferPoint    `json:"tech_transfer_revenue"`
	FacultyStatus       []FacultyStatusEntry   `json:"faculty_status"`
	IntlConferenceCount []ConferenceCountPoint `json:"intl_conference_count"`
}

type JournalGradeCount struct {
	JournalGrade string `json:"journal_grade"`
	Count        int    `json:"count"`
}

type DepartmentPaperCount struct {
	Department string `json:"department"`
	PaperCount int    `json:"paper_count"`
}

type PublicationTrendPoint struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

type PapersReport struct {
	JournalGradeDistribution []JournalGradeCount     `json:"journal_grade_distribution"`
	PublicationByDepartment  []DepartmentPaperCount  `json:"publication_by_department"`
	PublicationTrend         []PublicationTrendPoint `json:"publication_trend"`
}

type DepartmentStudentCount struct {
	Department   string `json:"department"`
	College      string `json:"college"`
	StudentCount int    `json:"student_count"`
}

type ProgramStudentCount struct {
	ProgramType  string `json:"program_type"`
	StudentCount int    `json:"student_count"`
}

type AcademicStatusCount struct {
	AcademicStatus string `json:"academic_status"`
	StudentCount   int    `json:"student_count"`
}

type StudentsReport struct {
	StudentsByDepartment     []DepartmentStudentCount `json:"students_by_department"`
	StudentsByProgram        []ProgramStudentCount    `json:"students_by_program"`
	AcademicStatusStatistics []AcademicStatusCount    `json:"academic_status_statistics"`
}

type BudgetExecutionPoint struct {
	ExecutionDate string `json:"execution_date"`
	ExpenseAmount int64  `json:"expense_amount"`
}

type FundingAgencyShare struct {
	FundingAgency  string  `json:"funding_agency"`
	TotalBudget    int64   `json:"total_budget"`
	ExecutedAmount int64   `json:"executed_amount"`
	ExecutionRate  float64 `json:"execution_rate"`
}

type ProjectExecutionRate struct {
	ProjectNumber  string  `json:"project_number"`
	ProjectName    string  `json:"project_name"`
	TotalBudget    int64   `json:"total_budget"`
	ExecutedAmount int64   `json:"executed_amount"`
	ExecutionRate  float64 `json:"execution_rate"`
}

type BudgetReport struct {
	ResearchBudgetExecution   []BudgetExecutionPoint `json:"research_budget_execution"`
	FundingAgencyDistribution []FundingAgencyShare   `json:"funding_agency_distribution"`
	ProjectExecutionRates     []ProjectExecutionRate `json:"project_execution_rates"`
}

type OverviewMetric struct {
	Label string      `json:"label"`
	Value interface{} `json:"value"`
	Unit  string      `json:"unit"`
	Trend string      `json:"trend"`
}

type OverviewReport struct {
	Performance OverviewMetric `json:"performance"`
	Papers      OverviewMetric `json:"papers"`
	Students    OverviewMetric `json:"students"`
	Budget      OverviewMetric `json:"budget"`
}

func (s *DashboardService) Performance(ctx context.Context, f *PerformanceFilters) (*PerformanceReport, error) {
	query := s.db.WithContext(ctx).Model(&models.DepartmentKPI{})
	if f != nil {
		if f.EvaluationYear != nil {
			query = query.Where("evaluation_year = ?", *f.EvaluationYear)
		}
		if f.College != "" {
			query = query.Where("college = ?", f.College)
		}
		if f.Department != "" {
			query = query.Where("department = ?", f.Department)
		}
	}

	var kpis []models.DepartmentKPI
	if err := query.Find(&kpis).Error; err != nil {
		return nil, err
	}
	return buildPerformanceReport(kpis), nil
}

// buildPerformanceReport groups KPI rows by the composite keys of each
// series. When several rows share a key, the first-encountered row wins; the
// dedup sets live only for this request.
func buildPerformanceReport(kpis []models.DepartmentKPI) *PerformanceReport {
	report := &PerformanceReport{
		EmploymentRates:     []EmploymentRatePoint{},
		TechTransferRevenue: []TechTransferPoint{},
		FacultyStatus:       []FacultyStatusEntry{},
		IntlConferenceCount: []ConferenceCountPoint{},
	}

	type deptYearKey struct {
		Year       int
		Department string
	}
	type employmentKey struct {
		Department string
		College    string
		Year       int
	}

	seenEmployment := make(map[employmentKey]struct{})
	seenTechTransfer := make(map[deptYearKey]struct{})
	seenFaculty := make(map[string]struct{})
	seenConference := make(map[deptYearKey]struct{})

	for _, kpi := range kpis {
		empKey := employmentKey{kpi.Department, kpi.College, kpi.EvaluationYear}
		if _, ok := seenEmployment[empKey]; !ok {
			seenEmployment[empKey] = struct{}{}
			report.EmploymentRates = append(report.EmploymentRates, EmploymentRatePoint{
				Department:     kpi.Department,
				College:        kpi.College,
				EmploymentRate: kpi.EmploymentRate,
				EvaluationYear: kpi.EvaluationYear,
			})
		}

		techKey := deptYearKey{kpi.EvaluationYear, kpi.Department}
		if _, ok := seenTechTransfer[techKey]; !ok {
			seenTechTransfer[techKey] = struct{}{}
			report.TechTransferRevenue = append(report.TechTransferRevenue, TechTransferPoint{
				EvaluationYear: kpi.EvaluationYear,
				Department:     kpi.Department,
				Revenue:        kpi.TechTransferRevenue,
			})
		}

		if _, ok := seenFaculty[kpi.Department]; !ok {
			seenFaculty[kpi.Department] = struct{}{}
			report.FacultyStatus = append(report.FacultyStatus, FacultyStatusEntry{
				Department:    kpi.Department,
				FulltimeCount: kpi.FulltimeFacultyCount,
				VisitingCount: kpi.VisitingFacultyCount,
			})
		}

		confKey := deptYearKey{kpi.EvaluationYear, kpi.Department}
		if _, ok := seenConference[confKey]; !ok {
			seenConference[confKey] = struct{}{}
			report.IntlConferenceCount = append(report.IntlConferenceCount, ConferenceCountPoint{
				EvaluationYear: kpi.EvaluationYear,
				Department:     kpi.Department,
				Count:          kpi.IntlConferenceCount,
			})
		}
	}

	return report
}

func (s *DashboardService) Papers(ctx context.Context, f *PapersFilters) (*PapersReport, error) {
	query := s.db.WithContext(ctx).Model(&models.Publication{})
	if f != nil {
		if f.StartDate != nil {
			query = query.Where("publication_date >= ?", *f.StartDate)
		}
		if f.EndDate != nil {
			query = query.Where("publication_date <= ?", *f.EndDate)
		}
		if f.College != "" {
			query = query.Where("college = ?", f.College)
		}
		if f.Department != "" {
			query = query.Where("department = ?", f.Department)
		}
		if f.JournalGrade != "" {
			query = query.Where("journal_grade = ?", f.JournalGrade)
		}
	}

	var pubs []models.Publication
	if err := query.Find(&pubs).Error; err != nil {
		return nil, err
	}
	return buildPapersReport(pubs), nil
}

func buildPapersReport(pubs []models.Publication) *PapersReport {
	report := &PapersReport{
		JournalGradeDistribution: []JournalGradeCount{},
		PublicationByDepartment:  []DepartmentPaperCount{},
		PublicationTrend:         []PublicationTrendPoint{},
	}

	gradeIdx := make(map[string]int)
	deptIdx := make(map[string]int)

	type yearMonth struct {
		Year  int
		Month int
	}
	trendCounts := make(map[yearMonth]int)

	for _, pub := range pubs {
		if idx, ok := gradeIdx[pub.JournalGrade]; ok {
			report.JournalGradeDistribution[idx].Count++
		} else {
			gradeIdx[pub.JournalGrade] = len(report.JournalGradeDistribution)
			report.JournalGradeDistribution = append(report.JournalGradeDistribution, JournalGradeCount{
				JournalGrade: pub.JournalGrade,
				Count:        1,
			})
		}

		if idx, ok := deptIdx[pub.Department]; ok {
			report.PublicationByDepartment[idx].PaperCount++
		} else {
			deptIdx[pub.Department] = len(report.PublicationByDepartment)
			report.PublicationByDepartment = append(report.PublicationByDepartment, DepartmentPaperCount{
				Department: pub.Department,
				PaperCount: 1,
			})
		}

		trendCounts[yearMonth{pub.PublicationDate.Year(), int(pub.PublicationDate.Month())}]++
	}

	for ym, count := range trendCounts {
		report.PublicationTrend = append(report.PublicationTrend, PublicationTrendPoint{
			Year:  ym.Year,
			Month: ym.Month,
			Count: count,
		})
	}
	sort.Slice(report.PublicationTrend, func(i, j int) bool {
		a, b := report.PublicationTrend[i], report.PublicationTrend[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	return report
}

func (s *DashboardService) Students(ctx context.Context, f *StudentsFilters) (*StudentsReport, error) {
	query := s.db.WithContext(ctx).Model(&models.StudentRoster{})
	if f != nil {
		if f.College != "" {
			query = query.Where("college = ?", f.College)
		}
		if f.Department != "" {
			query = query.Where("department = ?", f.Department)
		}
		if f.ProgramType != "" {
			query = query.Where("program_type = ?", f.ProgramType)
		}
		if f.AcademicStatus != "" {
			query = query.Where("academic_status = ?", f.AcademicStatus)
		}
	}

	var students []models.StudentRoster
	if err := query.Find(&students).Error; err != nil {
		return nil, err
	}
	return buildStudentsReport(students), nil
}

func buildStudentsReport(students []models.StudentRoster) *StudentsReport {
	report := &StudentsReport{
		StudentsByDepartment:     []DepartmentStudentCount{},
		StudentsByProgram:        []ProgramStudentCount{},
		AcademicStatusStatistics: []AcademicStatusCount{},
	}

	type deptKey struct {
		Department string
		College    string
	}
	deptIdx := make(map[deptKey]int)
	programIdx := make(map[string]int)
	statusIdx := make(map[string]int)

	for _, student := range students {
		dk := deptKey{student.Department, student.College}
		if idx, ok := deptIdx[dk]; ok {
			report.StudentsByDepartment[idx].StudentCount++
		} else {
			deptIdx[dk] = len(report.StudentsByDepartment)
			report.StudentsByDepartment = append(report.StudentsByDepartment, DepartmentStudentCount{
				Department:   student.Department,
				College:      student.College,
				StudentCount: 1,
			})
		}

		if idx, ok := programIdx[student.ProgramType]; ok {
			report.StudentsByProgram[idx].StudentCount++
		} else {
			programIdx[student.ProgramType] = len(report.StudentsByProgram)
			report.StudentsByProgram = append(report.StudentsByProgram, ProgramStudentCount{
				ProgramType:  student.ProgramType,
				StudentCount: 1,
			})
		}

		if idx, ok := statusIdx[student.AcademicStatus]; ok {
			report.AcademicStatusStatistics[idx].StudentCount++
		} else {
			statusIdx[student.AcademicStatus] = len(report.AcademicStatusStatistics)
			report.AcademicStatusStatistics = append(report.AcademicStatusStatistics, AcademicStatusCount{
				AcademicStatus: student.AcademicStatus,
				StudentCount:   1,
			})
		}
	}

	return report
}

func (s *DashboardService) Budget(ctx context.Context, f *BudgetFilters) (*BudgetReport, error) {
	query := s.db.WithContext(ctx).Model(&models.ResearchProjectExecution{})
	if f != nil {
		if f.StartDate != nil {
			query = query.Where("execution_date >= ?", *f.StartDate)
		}
		if f.EndDate != nil {
			query = query.Where("execution_date <= ?", *f.EndDate)
		}
		if f.Department != "" {
			query = query.Where("department = ?", f.Department)
		}
		if f.FundingAgency != "" {
			query = query.Where("funding_agency = ?", f.FundingAgency)
		}
		if f.Status != "" {
			query = query.Where("status = ?", f.Status)
		}
	}

	var executions []models.ResearchProjectExecution
	if err := query.Find(&executions).Error; err != nil {
		return nil, err
	}
	return buildBudgetReport(executions), nil
}

func buildBudgetReport(executions []models.ResearchProjectExecution) *BudgetReport {
	report := &BudgetReport{
		ResearchBudgetExecution:   []BudgetExecutionPoint{},
		FundingAgencyDistribution: []FundingAgencyShare{},
		ProjectExecutionRates:     []ProjectExecutionRate{},
	}

	dailyTotals := make(map[string]int64)
	agencyIdx := make(map[string]int)

	type projectKey struct {
		Number string
		Name   string
	}
	projectIdx := make(map[projectKey]int)

	for _, exec := range executions {
		day := exec.ExecutionDate.Format("2006-01-02")
		dailyTotals[day] += exec.ExpenseAmount

		if idx, ok := agencyIdx[exec.FundingAgency]; ok {
			report.FundingAgencyDistribution[idx].TotalBudget += exec.TotalBudget
			report.FundingAgencyDistribution[idx].ExecutedAmount += exec.ExpenseAmount
		} else {
			agencyIdx[exec.FundingAgency] = len(report.FundingAgencyDistribution)
			report.FundingAgencyDistribution = append(report.FundingAgencyDistribution, FundingAgencyShare{
				FundingAgency:  exec.FundingAgency,
				TotalBudget:    exec.TotalBudget,
				ExecutedAmount: exec.ExpenseAmount,
			})
		}

		pk := projectKey{exec.ProjectNumber, exec.ProjectName}
		if idx, ok := projectIdx[pk]; ok {
			report.ProjectExecutionRates[idx].TotalBudget += exec.TotalBudget
			report.ProjectExecutionRates[idx].ExecutedAmount += exec.ExpenseAmount
		} else {
			projectIdx[pk] = len(report.ProjectExecutionRates)
			report.ProjectExecutionRates = append(report.ProjectExecutionRates, ProjectExecutionRate{
				ProjectNumber:  exec.ProjectNumber,
				ProjectName:    exec.ProjectName,
				TotalBudget:    exec.TotalBudget,
				ExecutedAmount: exec.ExpenseAmount,
			})
		}
	}

	days := make([]string, 0, len(dailyTotals))
	for day := range dailyTotals {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		report.ResearchBudgetExecution = append(report.ResearchBudgetExecution, BudgetExecutionPoint{
			ExecutionDate: day,
			ExpenseAmount: dailyTotals[day],
		})
	}

	for i := range report.FundingAgencyDistribution {
		share := &report.FundingAgencyDistribution[i]
		share.ExecutionRate = executionRate(share.ExecutedAmount, share.TotalBudget)
	}
	for i := range report.ProjectExecutionRates {
		rate := &report.ProjectExecutionRates[i]
		rate.ExecutionRate = executionRate(rate.ExecutedAmount, rate.TotalBudget)
	}

	return report
}

func (s *DashboardService) Overview(ctx context.Context) (*OverviewReport, error) {
	db := s.db.WithContext(ctx)

	var yearRow struct {
		MaxYear *int
	}
	if err := db.Model(&models.DepartmentKPI{}).Select("MAX(evaluation_year) AS max_year").Scan(&yearRow).Error; err != nil {
		return nil, err
	}

	performanceValue := 0.0
	if yearRow.MaxYear != nil {
		var rateRow struct {
			AvgRate *float64
		}
		if err := db.Model(&models.DepartmentKPI{}).
			Where("evaluation_year = ?", *yearRow.MaxYear).
			Select("AVG(employment_rate) AS avg_rate").Scan(&rateRow).Error; err != nil {
			return nil, err
		}
		if rateRow.AvgRate != nil {
			performanceValue = *rateRow.AvgRate
		}
	}

	oneYearAgo := time.Now().AddDate(0, 0, -365)
	var papersCount int64
	if err := db.Model(&models.Publication{}).
		Where("publication_date >= ?", oneYearAgo).
		Count(&papersCount).Error; err != nil {
		return nil, err
	}

	var studentsCount int64
	if err := db.Model(&models.StudentRoster{}).
		Where("academic_status = ?", models.AcademicStatusEnrolled).
		Count(&studentsCount).Error; err != nil {
		return nil, err
	}

	var budgetTotals struct {
		TotalBudget  int64
		TotalExpense int64
	}
	if err := db.Model(&models.ResearchProjectExecution{}).
		Select("COALESCE(SUM(total_budget), 0) AS total_budget, COALESCE(SUM(expense_amount), 0) AS total_expense").
		Scan(&budgetTotals).Error; err != nil {
		return nil, err
	}
	budgetValue := 0.0
	if budgetTotals.TotalBudget > 0 {
		budgetValue = float64(budgetTotals.TotalExpense) / float64(budgetTotals.TotalBudget) * 100
	}

	return &OverviewReport{
		Performance: OverviewMetric{Label: "실적", Value: round1(performanceValue), Unit: "%", Trend: "up"},
		Papers:      OverviewMetric{Label: "논문", Value: papersCount, Unit: "건", Trend: "up"},
		Students:    OverviewMetric{Label: "학생", Value: studentsCount, Unit: "명", Trend: "stable"},
		Budget:      OverviewMetric{Label: "예산", Value: round1(budgetValue), Unit: "%", Trend: "up"},
	}, nil
}

// executionRate returns spent/budgeted as a percentage rounded to two
// decimals, and exactly 0.0 for a zero budget.
func executionRate(executed, total int64) float64 {
	if total <= 0 {
		return 0.0
	}
	return round2(float64(executed) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
