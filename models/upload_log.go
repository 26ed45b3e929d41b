package models

// Supported data types for a CSV upload.
const (
	DataTypeKPI         = "kpi"
	DataTypePublication = "publication"
	DataTypeProject     = "project"
	DataTypeStudent     = "student"
)

// SupportedDataTypes lists every data type an upload may declare.
var SupportedDataTypes = []string{DataTypeKPI, DataTypePublication, DataTypeProject, DataTypeStudent}

// IsSupportedDataType reports whether dataType names an ingestable kind.
func IsSupportedDataType(dataType string) bool {
	for _, t := range SupportedDataTypes {
		if t == dataType {
			return true
		}
	}
	return false
}

// UploadLog is the append-only audit record of one CSV ingestion run.
// Rows are never mutated after creation; the uploader reference is by id
// only and must not cascade on user deletion.
type UploadLog struct {
	BaseModel
	FileName     string `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	DataType     string `gorm:"column:data_type;type:varchar(20);not null;index:idx_upload_logs_data_type" json:"data_type"`
	TotalRows    int    `gorm:"column:total_rows;not null" json:"total_rows"`
	SuccessRows  int    `gorm:"column:success_rows;not null" json:"success_rows"`
	FailedRows   int    `gorm:"column:failed_rows;not null" json:"failed_rows"`
	ErrorDetails string `gorm:"column:error_details;type:text" json:"-"`
	UploadedBy   int    `gorm:"column:uploaded_by;not null;index:idx_upload_logs_uploaded_by" json:"uploaded_by"`
	Uploader     User   `gorm:"foreignKey:UploadedBy;constraint:OnDelete:RESTRICT" json:"-"`
}

func (UploadLog) TableName() string {
	return "upload_logs"
}
