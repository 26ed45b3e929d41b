package models

import "time"

// Execution states of a research project expense row.
const (
	ProjectStatusCompleted  = "집행완료"
	ProjectStatusInProgress = "처리중"
	ProjectStatusRejected   = "반려"
)

// ResearchProjectExecution represents one budget execution line of a research
// project. Natural key: execution_id. Amounts are integral KRW.
type ResearchProjectExecution struct {
	BaseModel
	ExecutionID           string    `gorm:"column:execution_id;type:varchar(20);not null;uniqueIndex:uniq_execution_id" json:"execution_id"`
	ProjectNumber         string    `gorm:"column:project_number;type:varchar(50);not null;index:idx_research_project_number" json:"project_number"`
	ProjectName           string    `gorm:"column:project_name;type:varchar(200);not null" json:"project_name"`
	PrincipalInvestigator string    `gorm:"column:principal_investigator;type:varchar(100);not null" json:"principal_investigator"`
	Department            string    `gorm:"column:department;type:varchar(50);not null;index:idx_research_project_dept" json:"department"`
	FundingAgency         string    `gorm:"column:funding_agency;type:varchar(100);not null;index:idx_research_project_funding_agency" json:"funding_agency"`
	TotalBudget           int64     `gorm:"column:total_budget;not null" json:"total_budget"`
	ExecutionDate         time.Time `gorm:"column:execution_date;type:date;not null;index:idx_research_project_date" json:"execution_date"`
	ExpenseItem           string    `gorm:"column:expense_item;type:varchar(100);not null" json:"expense_item"`
	ExpenseAmount         int64     `gorm:"column:expense_amount;not null" json:"expense_amount"`
	Status                string    `gorm:"column:status;type:varchar(20);not null;index:idx_research_project_status" json:"status"`
	Notes                 *string   `gorm:"column:notes;type:varchar(500)" json:"notes,omitempty"`
}

func (ResearchProjectExecution) TableName() string {
	return "research_project_data"
}
