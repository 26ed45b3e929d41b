package services

import (
	"fmt"
	"strings"

	"dept-analytics-api/models"
	"dept-analytics-api/utils"
)

// RowError is one failed row of an upload, echoed back with the raw values
// so the end user can correct the file without re-opening it.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Data   Row    `json:"data"`
}

// fieldValue returns the first non-empty value among the candidate column
// names, tried in order. KPI files may label columns either in Korean or
// with the English identifier.
func fieldValue(row Row, keys ...string) string {
	for _, key := range keys {
		if v := row[key]; v != "" {
			return v
		}
	}
	return ""
}

func rowFailure(row Row, rowNumber int, reasons []string) *RowError {
	return &RowError{
		Row:    rowNumber,
		Reason: strings.Join(reasons, "; "),
		Data:   row,
	}
}

func validateKPIRow(row Row, rowNumber int) (*models.DepartmentKPI, *RowError) {
	var reasons []string
	kpi := &models.DepartmentKPI{}

	rawYear := fieldValue(row, "평가년도", "evaluation_year")
	if year, err := utils.ParseFlexInt(rawYear); err != nil {
		reasons = append(reasons, fmt.Sprintf("평가년도가 유효하지 않습니다: %s", rawYear))
	} else if year < 2023 || year > 2025 {
		reasons = append(reasons, "평가년도는 2023~2025 사이여야 합니다")
	} else {
		kpi.EvaluationYear = int(year)
	}

	kpi.College = strings.TrimSpace(fieldValue(row, "단과대학", "college"))
	if kpi.College == "" {
		reasons = append(reasons, "단과대학명이 필수입니다")
	}

	kpi.Department = strings.TrimSpace(fieldValue(row, "학과", "department"))
	if kpi.Department == "" {
		reasons = append(reasons, "학과명이 필수입니다")
	}

	if raw := fieldValue(row, "졸업생 취업률 (%)", "employment_rate"); strings.TrimSpace(raw) != "" {
		if rate, err := utils.ParseFlexFloat(raw); err != nil {
			reasons = append(reasons, fmt.Sprintf("취업률이 유효하지 않습니다: %s", raw))
		} else if rate < 0 || rate > 100 {
			reasons = append(reasons, fmt.Sprintf("취업률은 0~100 사이여야 합니다: %v", rate))
		} else {
			kpi.EmploymentRate = rate
		}
	}

	if raw := fieldValue(row, "전임교원 수 (명)", "fulltime_faculty_count"); strings.TrimSpace(raw) != "" {
		if count, err := utils.ParseFlexInt(raw); err != nil {
			reasons = append(reasons, "전임교원 수가 유효하지 않습니다")
		} else if count < 0 {
			reasons = append(reasons, fmt.Sprintf("전임교원 수는 0 이상이어야 합니다: %d", count))
		} else {
			kpi.FulltimeFacultyCount = int(count)
		}
	}

	if raw := fieldValue(row, "초빙교원 수 (명)", "visiting_faculty_count"); strings.TrimSpace(raw) != "" {
		if count, err := utils.ParseFlexInt(raw); err != nil {
			reasons = append(reasons, "초빙교원 수가 유효하지 않습니다")
		} else if count < 0 {
			reasons = append(reasons, fmt.Sprintf("초빙교원 수는 0 이상이어야 합니다: %d", count))
		} else {
			kpi.VisitingFacultyCount = int(count)
		}
	}

	if raw := fieldValue(row, "연간 기술이전 수입액 (억원)", "tech_transfer_revenue"); strings.TrimSpace(raw) != "" {
		if revenue, err := utils.ParseFlexFloat(raw); err != nil {
			reasons = append(reasons, "기술이전 수입액이 유효하지 않습니다")
		} else if revenue < 0 {
			reasons = append(reasons, fmt.Sprintf("기술이전 수입액은 0 이상이어야 합니다: %v", revenue))
		} else {
			kpi.TechTransferRevenue = revenue
		}
	}

	if raw := fieldValue(row, "국제학술대회 개최 횟수", "intl_conference_count"); strings.TrimSpace(raw) != "" {
		if count, err := utils.ParseFlexInt(raw); err != nil {
			reasons = append(reasons, "국제학술대회 개최 횟수가 유효하지 않습니다")
		} else if count < 0 {
			reasons = append(reasons, fmt.Sprintf("국제학술대회 개최 횟수는 0 이상이어야 합니다: %d", count))
		} else {
			kpi.IntlConferenceCount = int(count)
		}
	}

	if len(reasons) > 0 {
		return nil, rowFailure(row, rowNumber, reasons)
	}
	return kpi, nil
}

func validatePublicationRow(row Row, rowNumber int) (*models.Publication, *RowError) {
	var reasons []string
	pub := &models.Publication{}

	pub.PublicationID = strings.TrimSpace(row["publication_id"])
	if pub.PublicationID == "" {
		reasons = append(reasons, "논문ID가 필수입니다")
	}

	rawDate := row["publication_date"]
	if date, err := utils.ParseFlexDate(rawDate); err != nil {
		reasons = append(reasons, fmt.Sprintf("게재일이 유효하지 않습니다: %s", rawDate))
	} else {
		pub.PublicationDate = date
	}

	pub.College = strings.TrimSpace(row["college"])
	pub.Department = strings.TrimSpace(row["department"])
	pub.Title = strings.TrimSpace(row["title"])
	pub.FirstAuthor = strings.TrimSpace(row["first_author"])
	pub.JournalName = strings.TrimSpace(row["journal_name"])

	pub.JournalGrade = strings.TrimSpace(row["journal_grade"])
	switch pub.JournalGrade {
	case models.JournalGradeSCIE, models.JournalGradeKCI, models.JournalGradeGeneral:
	default:
		reasons = append(reasons, fmt.Sprintf("저널등급이 유효하지 않습니다: %s (SCIE, KCI, 일반 중 하나)", pub.JournalGrade))
	}

	// Impact factor is optional metadata: only read for SCIE papers, and a
	// bad value is dropped rather than failing the row.
	if pub.JournalGrade == models.JournalGradeSCIE {
		if raw := strings.TrimSpace(row["impact_factor"]); raw != "" {
			if factor, err := utils.ParseFlexFloat(raw); err == nil {
				pub.ImpactFactor = &factor
			}
		}
	}

	pub.ProjectLinked = strings.ToUpper(strings.TrimSpace(row["project_linked"]))
	if pub.ProjectLinked != "Y" && pub.ProjectLinked != "N" {
		pub.ProjectLinked = "N"
	}

	pub.CoAuthors = utils.OptionalString(row["co_authors"])

	if len(reasons) > 0 {
		return nil, rowFailure(row, rowNumber, reasons)
	}
	return pub, nil
}

func validateProjectRow(row Row, rowNumber int) (*models.ResearchProjectExecution, *RowError) {
	var reasons []string
	proj := &models.ResearchProjectExecution{}

	proj.ExecutionID = strings.TrimSpace(row["execution_id"])
	if proj.ExecutionID == "" {
		reasons = append(reasons, "집행ID가 필수입니다")
	}

	proj.ProjectNumber = strings.TrimSpace(row["project_number"])
	proj.ProjectName = strings.TrimSpace(row["project_name"])
	proj.PrincipalInvestigator = strings.TrimSpace(row["principal_investigator"])
	proj.Department = strings.TrimSpace(row["department"])
	proj.FundingAgency = strings.TrimSpace(row["funding_agency"])

	rawBudget := row["total_budget"]
	if budget, err := utils.ParseFlexInt(rawBudget); err != nil {
		reasons = append(reasons, fmt.Sprintf("총연구비가 유효하지 않습니다: %s", rawBudget))
	} else if budget < 0 {
		reasons = append(reasons, fmt.Sprintf("총연구비는 0 이상이어야 합니다: %d", budget))
	} else {
		proj.TotalBudget = budget
	}

	rawDate := row["execution_date"]
	if date, err := utils.ParseFlexDate(rawDate); err != nil {
		reasons = append(reasons, fmt.Sprintf("집행일자가 유효하지 않습니다: %s", rawDate))
	} else {
		proj.ExecutionDate = date
	}

	proj.ExpenseItem = strings.TrimSpace(row["expense_item"])

	rawAmount := row["expense_amount"]
	if amount, err := utils.ParseFlexInt(rawAmount); err != nil {
		reasons = append(reasons, fmt.Sprintf("집행금액이 유효하지 않습니다: %s", rawAmount))
	} else if amount < 0 {
		reasons = append(reasons, fmt.Sprintf("집행금액은 0 이상이어야 합니다: %d", amount))
	} else {
		proj.ExpenseAmount = amount
	}

	// Unknown states fall back to in-progress instead of failing the row.
	proj.Status = strings.TrimSpace(row["status"])
	switch proj.Status {
	case models.ProjectStatusCompleted, models.ProjectStatusInProgress, models.ProjectStatusRejected:
	default:
		proj.Status = models.ProjectStatusInProgress
	}

	proj.Notes = utils.OptionalString(row["notes"])

	if len(reasons) > 0 {
		return nil, rowFailure(row, rowNumber, reasons)
	}
	return proj, nil
}

func validateStudentRow(row Row, rowNumber int) (*models.StudentRoster, *RowError) {
	var reasons []string
	student := &models.StudentRoster{}

	student.StudentID = strings.TrimSpace(row["student_id"])
	if student.StudentID == "" {
		reasons = append(reasons, "학번이 필수입니다")
	}

	student.Name = strings.TrimSpace(row["name"])
	student.College = strings.TrimSpace(row["college"])
	student.Department = strings.TrimSpace(row["department"])

	rawGrade := row["grade"]
	if grade, err := utils.ParseFlexInt(rawGrade); err != nil {
		reasons = append(reasons, fmt.Sprintf("학년이 유효하지 않습니다: %s", rawGrade))
	} else if grade < 0 || grade > 4 {
		reasons = append(reasons, fmt.Sprintf("학년은 0~4 사이여야 합니다: %d", grade))
	} else {
		student.Grade = int(grade)
	}

	student.ProgramType = strings.TrimSpace(row["program_type"])
	switch student.ProgramType {
	case models.ProgramTypeBachelor, models.ProgramTypeMaster, models.ProgramTypeDoctoral:
	default:
		reasons = append(reasons, fmt.Sprintf("과정구분이 유효하지 않습니다: %s", student.ProgramType))
	}

	student.AcademicStatus = strings.TrimSpace(row["academic_status"])
	switch student.AcademicStatus {
	case models.AcademicStatusEnrolled, models.AcademicStatusOnLeave, models.AcademicStatusGraduated, models.AcademicStatusExpelled:
	default:
		reasons = append(reasons, fmt.Sprintf("학적상태가 유효하지 않습니다: %s", student.AcademicStatus))
	}

	student.Gender = strings.TrimSpace(row["gender"])
	if student.Gender != "남" && student.Gender != "여" {
		reasons = append(reasons, fmt.Sprintf("성별이 유효하지 않습니다: %s", student.Gender))
	}

	rawYear := row["admission_year"]
	if year, err := utils.ParseFlexInt(rawYear); err != nil {
		reasons = append(reasons, fmt.Sprintf("입학년도가 유효하지 않습니다: %s", rawYear))
	} else if year < 2000 || year > 2100 {
		reasons = append(reasons, fmt.Sprintf("입학년도는 2000~2100 사이여야 합니다: %d", year))
	} else {
		student.AdmissionYear = int(year)
	}

	student.Advisor = utils.OptionalString(row["advisor"])
	student.Email = strings.TrimSpace(row["email"])

	if len(reasons) > 0 {
		return nil, rowFailure(row, rowNumber, reasons)
	}
	return student, nil
}
