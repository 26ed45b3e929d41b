package models

// Enumerations for student roster rows.
const (
	ProgramTypeBachelor = "학사"
	ProgramTypeMaster   = "석사"
	ProgramTypeDoctoral = "박사"

	AcademicStatusEnrolled  = "재학"
	AcademicStatusOnLeave   = "휴학"
	AcademicStatusGraduated = "졸업"
	AcademicStatusExpelled  = "제적"
)

// StudentRoster represents one enrolled or former student.
// Natural key: student_id. Grade 0 marks a graduate student.
type StudentRoster struct {
	BaseModel
	StudentID      string  `gorm:"column:student_id;type:varchar(10);not null;uniqueIndex:uniq_student_id" json:"student_id"`
	Name           string  `gorm:"column:name;type:varchar(50);not null" json:"name"`
	College        string  `gorm:"column:college;type:varchar(50);not null;index:idx_student_roster_college_dept,priority:1" json:"college"`
	Department     string  `gorm:"column:department;type:varchar(50);not null;index:idx_student_roster_college_dept,priority:2" json:"department"`
	Grade          int     `gorm:"column:grade;not null" json:"grade"`
	ProgramType    string  `gorm:"column:program_type;type:varchar(10);not null;index:idx_student_roster_program_type" json:"program_type"`
	AcademicStatus string  `gorm:"column:academic_status;type:varchar(20);not null;index:idx_student_roster_academic_status" json:"academic_status"`
	Gender         string  `gorm:"column:gender;type:varchar(2);not null" json:"gender"`
	AdmissionYear  int     `gorm:"column:admission_year;not null" json:"admission_year"`
	Advisor        *string `gorm:"column:advisor;type:varchar(50)" json:"advisor,omitempty"`
	Email          string  `gorm:"column:email;type:varchar(100);not null" json:"email"`
}

func (StudentRoster) TableName() string {
	return "student_roster"
}
