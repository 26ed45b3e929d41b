package models

// DepartmentKPI represents the yearly performance indicators of one department.
// Natural key: (evaluation_year, department).
type DepartmentKPI struct {
	BaseModel
	EvaluationYear       int     `gorm:"column:evaluation_year;not null;uniqueIndex:uniq_year_department,priority:1" json:"evaluation_year"`
	College              string  `gorm:"column:college;type:varchar(50);not null;index:idx_department_kpi_college" json:"college"`
	Department           string  `gorm:"column:department;type:varchar(50);not null;uniqueIndex:uniq_year_department,priority:2" json:"department"`
	EmploymentRate       float64 `gorm:"column:employment_rate;type:decimal(5,2);not null" json:"employment_rate"`
	FulltimeFacultyCount int     `gorm:"column:fulltime_faculty_count;not null" json:"fulltime_faculty_count"`
	VisitingFacultyCount int     `gorm:"column:visiting_faculty_count;not null" json:"visiting_faculty_count"`
	TechTransferRevenue  float64 `gorm:"column:tech_transfer_revenue;type:decimal(10,2);not null" json:"tech_transfer_revenue"`
	IntlConferenceCount  int     `gorm:"column:intl_conference_count;not null" json:"intl_conference_count"`
}

func (DepartmentKPI) TableName() string {
	return "department_kpi"
}
