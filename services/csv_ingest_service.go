package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dept-analytics-api/config"
	"dept-analytics-api/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUnsupportedDataType = errors.New("unsupported data type")
)

const (
	// validateWorkers bounds the per-upload validation fan-out. Rows have no
	// cross-row dependency, so they validate concurrently; staging stays in
	// file order.
	validateWorkers = 8

	insertBatchSize = 500

	// maxLoggedErrors bounds the error excerpt serialized into the upload log.
	maxLoggedErrors = 100
)

type CSVIngestInput struct {
	Data       []byte
	DataType   string
	UploadedBy int
	FileName   string
}

type CSVIngestResult struct {
	TotalRows   int        `json:"total_rows"`
	SuccessRows int        `json:"success_rows"`
	FailedRows  int        `json:"failed_rows"`
	Errors      []RowError `json:"errors"`
	UploadLogID string     `json:"upload_id"`
}

type CSVIngestService struct {
	db *gorm.DB
}

func NewCSVIngestService(db *gorm.DB) *CSVIngestService {
	if db == nil {
		db = config.DB
	}
	return &CSVIngestService{db: db}
}

// Ingest decodes, validates, and persists one CSV upload inside a single
// transaction. Row failures never abort the batch; decode failures and
// storage failures roll everything back, including the upload log.
func (s *CSVIngestService) Ingest(ctx context.Context, input *CSVIngestInput) (*CSVIngestResult, error) {
	if input == nil {
		return nil, errors.New("input is nil")
	}
	if !models.IsSupportedDataType(input.DataType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDataType, input.DataType)
	}

	_, rows, err := DecodeCSV(input.Data)
	if err != nil {
		return nil, err
	}

	result := &CSVIngestResult{TotalRows: len(rows), Errors: []RowError{}}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		switch input.DataType {
		case models.DataTypeKPI:
			txErr = s.ingestKPI(ctx, tx, rows, result)
		case models.DataTypePublication:
			txErr = s.ingestPublications(ctx, tx, rows, result)
		case models.DataTypeProject:
			txErr = s.ingestProjects(ctx, tx, rows, result)
		case models.DataTypeStudent:
			txErr = s.ingestStudents(ctx, tx, rows, result)
		}
		if txErr != nil {
			return txErr
		}
		return s.writeUploadLog(tx, input, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateRowsParallel runs the validator over all rows with a bounded
// worker group, writing results into index-addressed slices so file order
// is preserved for the staging pass.
func validateRowsParallel[T any](ctx context.Context, rows []Row, validate func(Row, int) (*T, *RowError)) ([]*T, []*RowError, error) {
	records := make([]*T, len(rows))
	rowErrs := make([]*RowError, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(validateWorkers)
	for i := range rows {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i], rowErrs[i] = validate(rows[i], dataRowNumber(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return records, rowErrs, nil
}

func (s *CSVIngestService) ingestKPI(ctx context.Context, tx *gorm.DB, rows []Row, result *CSVIngestResult) error {
	records, rowErrs, err := validateRowsParallel(ctx, rows, validateKPIRow)
	if err != nil {
		return err
	}

	type kpiKey struct {
		Year       int
		Department string
	}

	var staged []*models.DepartmentKPI
	stagedIdx := make(map[kpiKey]int)

	for i := range rows {
		if rowErrs[i] != nil {
			result.FailedRows++
			result.Errors = append(result.Errors, *rowErrs[i])
			continue
		}
		rec := records[i]
		key := kpiKey{rec.EvaluationYear, rec.Department}

		// Same natural key twice in one file: the later row replaces the
		// staged one, consistent with last-upload-wins.
		if idx, ok := stagedIdx[key]; ok {
			staged[idx] = rec
			result.SuccessRows++
			continue
		}

		var existing models.DepartmentKPI
		err := tx.Where("evaluation_year = ? AND department = ?", rec.EvaluationYear, rec.Department).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.DepartmentKPI{}).Where("id = ?", existing.ID).Updates(kpiAssignments(rec)).Error; err != nil {
				return err
			}
			result.SuccessRows++
		case errors.Is(err, gorm.ErrRecordNotFound):
			stagedIdx[key] = len(staged)
			staged = append(staged, rec)
			result.SuccessRows++
		default:
			return err
		}
	}

	if len(staged) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(staged, insertBatchSize).Error; err != nil {
		if !isDuplicateKeyError(err) {
			return err
		}
		// A concurrent upload inserted the same natural key between our
		// lookup and the bulk insert; retry each record as an upsert.
		for _, rec := range staged {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "evaluation_year"}, {Name: "department"}},
				DoUpdates: clause.Assignments(kpiAssignments(rec)),
			}).Create(rec).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *CSVIngestService) ingestPublications(ctx context.Context, tx *gorm.DB, rows []Row, result *CSVIngestResult) error {
	records, rowErrs, err := validateRowsParallel(ctx, rows, validatePublicationRow)
	if err != nil {
		return err
	}

	var staged []*models.Publication
	stagedIdx := make(map[string]int)

	for i := range rows {
		if rowErrs[i] != nil {
			result.FailedRows++
			result.Errors = append(result.Errors, *rowErrs[i])
			continue
		}
		rec := records[i]

		if idx, ok := stagedIdx[rec.PublicationID]; ok {
			staged[idx] = rec
			result.SuccessRows++
			continue
		}

		var existing models.Publication
		err := tx.Where("publication_id = ?", rec.PublicationID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.Publication{}).Where("id = ?", existing.ID).Updates(publicationAssignments(rec)).Error; err != nil {
				return err
			}
			result.SuccessRows++
		case errors.Is(err, gorm.ErrRecordNotFound):
			stagedIdx[rec.PublicationID] = len(staged)
			staged = append(staged, rec)
			result.SuccessRows++
		default:
			return err
		}
	}

	if len(staged) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(staged, insertBatchSize).Error; err != nil {
		if !isDuplicateKeyError(err) {
			return err
		}
		for _, rec := range staged {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "publication_id"}},
				DoUpdates: clause.Assignments(publicationAssignments(rec)),
			}).Create(rec).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *CSVIngestService) ingestProjects(ctx context.Context, tx *gorm.DB, rows []Row, result *CSVIngestResult) error {
	records, rowErrs, err := validateRowsParallel(ctx, rows, validateProjectRow)
	if err != nil {
		return err
	}

	var staged []*models.ResearchProjectExecution
	stagedIdx := make(map[string]int)

	for i := range rows {
		if rowErrs[i] != nil {
			result.FailedRows++
			result.Errors = append(result.Errors, *rowErrs[i])
			continue
		}
		rec := records[i]

		if idx, ok := stagedIdx[rec.ExecutionID]; ok {
			staged[idx] = rec
			result.SuccessRows++
			continue
		}

		var existing models.ResearchProjectExecution
		err := tx.Where("execution_id = ?", rec.ExecutionID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.ResearchProjectExecution{}).Where("id = ?", existing.ID).Updates(projectAssignments(rec)).Error; err != nil {
				return err
			}
			result.SuccessRows++
		case errors.Is(err, gorm.ErrRecordNotFound):
			stagedIdx[rec.ExecutionID] = len(staged)
			staged = append(staged, rec)
			result.SuccessRows++
		default:
			return err
		}
	}

	if len(staged) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(staged, insertBatchSize).Error; err != nil {
		if !isDuplicateKeyError(err) {
			return err
		}
		for _, rec := range staged {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "execution_id"}},
				DoUpdates: clause.Assignments(projectAssignments(rec)),
			}).Create(rec).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *CSVIngestService) ingestStudents(ctx context.Context, tx *gorm.DB, rows []Row, result *CSVIngestResult) error {
	records, rowErrs, err := validateRowsParallel(ctx, rows, validateStudentRow)
	if err != nil {
		return err
	}

	var staged []*models.StudentRoster
	stagedIdx := make(map[string]int)

	for i := range rows {
		if rowErrs[i] != nil {
			result.FailedRows++
			result.Errors = append(result.Errors, *rowErrs[i])
			continue
		}
		rec := records[i]

		if idx, ok := stagedIdx[rec.StudentID]; ok {
			staged[idx] = rec
			result.SuccessRows++
			continue
		}

		var existing models.StudentRoster
		err := tx.Where("student_id = ?", rec.StudentID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.StudentRoster{}).Where("id = ?", existing.ID).Updates(studentAssignments(rec)).Error; err != nil {
				return err
			}
			result.SuccessRows++
		case errors.Is(err, gorm.ErrRecordNotFound):
			stagedIdx[rec.StudentID] = len(staged)
			staged = append(staged, rec)
			result.SuccessRows++
		default:
			return err
		}
	}

	if len(staged) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(staged, insertBatchSize).Error; err != nil {
		if !isDuplicateKeyError(err) {
			return err
		}
		for _, rec := range staged {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "student_id"}},
				DoUpdates: clause.Assignments(studentAssignments(rec)),
			}).Create(rec).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *CSVIngestService) writeUploadLog(tx *gorm.DB, input *CSVIngestInput, result *CSVIngestResult) error {
	excerpt := result.Errors
	if len(excerpt) > maxLoggedErrors {
		excerpt = excerpt[:maxLoggedErrors]
	}
	details, err := json.Marshal(excerpt)
	if err != nil {
		return err
	}

	logRow := &models.UploadLog{
		FileName:     input.FileName,
		DataType:     input.DataType,
		TotalRows:    result.TotalRows,
		SuccessRows:  result.SuccessRows,
		FailedRows:   result.FailedRows,
		ErrorDetails: string(details),
		UploadedBy:   input.UploadedBy,
	}
	if err := tx.Omit(clause.Associations).Create(logRow).Error; err != nil {
		return err
	}
	result.UploadLogID = logRow.ID
	return nil
}

func kpiAssignments(rec *models.DepartmentKPI) map[string]interface{} {
	return map[string]interface{}{
		"college":                rec.College,
		"employment_rate":        rec.EmploymentRate,
		"fulltime_faculty_count": rec.FulltimeFacultyCount,
		"visiting_faculty_count": rec.VisitingFacultyCount,
		"tech_transfer_revenue":  rec.TechTransferRevenue,
		"intl_conference_count":  rec.IntlConferenceCount,
	}
}

func publicationAssignments(rec *models.Publication) map[string]interface{} {
	return map[string]interface{}{
		"publication_date": rec.PublicationDate,
		"college":          rec.College,
		"department":       rec.Department,
		"title":            rec.Title,
		"first_author":     rec.FirstAuthor,
		"co_authors":       rec.CoAuthors,
		"journal_name":     rec.JournalName,
		"journal_grade":    rec.JournalGrade,
		"impact_factor":    rec.ImpactFactor,
		"project_linked":   rec.ProjectLinked,
	}
}

func projectAssignments(rec *models.ResearchProjectExecution) map[string]interface{} {
	return map[string]interface{}{
		"project_number":         rec.ProjectNumber,
		"project_name":           rec.ProjectName,
		"principal_investigator": rec.PrincipalInvestigator,
		"department":             rec.Department,
		"funding_agency":         rec.FundingAgency,
		"total_budget":           rec.TotalBudget,
		"execution_date":         rec.ExecutionDate,
		"expense_item":           rec.ExpenseItem,
		"expense_amount":         rec.ExpenseAmount,
		"status":                 rec.Status,
		"notes":                  rec.Notes,
	}
}

func studentAssignments(rec *models.StudentRoster) map[string]interface{} {
	return map[string]interface{}{
		"name":            rec.Name,
		"college":         rec.College,
		"department":      rec.Department,
		"grade":           rec.Grade,
		"program_type":    rec.ProgramType,
		"academic_status": rec.AcademicStatus,
		"gender":          rec.Gender,
		"admission_year":  rec.AdmissionYear,
		"advisor":         rec.Advisor,
		"email":           rec.Email,
	}
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "Error 1062")
}
