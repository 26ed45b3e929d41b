package models

import "time"

// Journal grades accepted for a publication row.
const (
	JournalGradeSCIE    = "SCIE"
	JournalGradeKCI     = "KCI"
	JournalGradeGeneral = "일반"
)

// Publication represents one published paper. Natural key: publication_id.
type Publication struct {
	BaseModel
	PublicationID   string    `gorm:"column:publication_id;type:varchar(20);not null;uniqueIndex:uniq_publication_id" json:"publication_id"`
	PublicationDate time.Time `gorm:"column:publication_date;type:date;not null;index:idx_publication_list_date" json:"publication_date"`
	College         string    `gorm:"column:college;type:varchar(50);not null;index:idx_publication_list_college_dept,priority:1" json:"college"`
	Department      string    `gorm:"column:department;type:varchar(50);not null;index:idx_publication_list_college_dept,priority:2" json:"department"`
	Title           string    `gorm:"column:title;type:varchar(500);not null" json:"title"`
	FirstAuthor     string    `gorm:"column:first_author;type:varchar(100);not null" json:"first_author"`
	CoAuthors       *string   `gorm:"column:co_authors;type:varchar(500)" json:"co_authors,omitempty"`
	JournalName     string    `gorm:"column:journal_name;type:varchar(200);not null" json:"journal_name"`
	JournalGrade    string    `gorm:"column:journal_grade;type:varchar(20);not null;index:idx_publication_list_journal_grade" json:"journal_grade"`
	ImpactFactor    *float64  `gorm:"column:impact_factor;type:decimal(5,2)" json:"impact_factor,omitempty"`
	ProjectLinked   string    `gorm:"column:project_linked;type:varchar(1);not null" json:"project_linked"`
}

func (Publication) TableName() string {
	return "publication_list"
}
