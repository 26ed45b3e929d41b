package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"

	"dept-analytics-api/models"
)

const kpiHeader = "평가년도,단과대학,학과,졸업생 취업률 (%),전임교원 수 (명),초빙교원 수 (명),연간 기술이전 수입액 (억원),국제학술대회 개최 횟수\n"

func TestIngestRejectsUnsupportedDataType(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := NewCSVIngestService(db)
	_, err := svc.Ingest(context.Background(), &CSVIngestInput{
		Data:     []byte(kpiHeader),
		DataType: "grades",
		FileName: "grades.csv",
	})
	if !errors.Is(err, ErrUnsupportedDataType) {
		t.Fatalf("expected ErrUnsupportedDataType, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestIngestDecodeFailureTouchesNothing(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := NewCSVIngestService(db)
	_, err := svc.Ingest(context.Background(), &CSVIngestInput{
		Data:     []byte{0xff, 0xfe, 0x00},
		DataType: models.DataTypeKPI,
		FileName: "bad.csv",
	})

	var decodeErr *CSVDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected CSVDecodeError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestIngestKPIPartialFailure(t *testing.T) {
	csvData := kpiHeader +
		"2024,공과대학,컴퓨터공학과,85.5,10,2,5.2,3\n" +
		"2022,공과대학,전기공학과,80.0,8,1,2.0,1\n"

	steps := []*queryStep{
		beginStep(),
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `department_kpi` WHERE evaluation_year = \\? AND department = \\?"),
			args:    []driver.Value{int64(2024), "컴퓨터공학과"},
			columns: []string{"id"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `department_kpi`"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `upload_logs`"),
			result:  scriptedResult{rowsAffected: 1},
		},
		commitStep(),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewCSVIngestService(db)
	result, err := svc.Ingest(context.Background(), &CSVIngestInput{
		Data:       []byte(csvData),
		DataType:   models.DataTypeKPI,
		UploadedBy: 7,
		FileName:   "kpi.csv",
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if result.TotalRows != 2 || result.SuccessRows != 1 || result.FailedRows != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.SuccessRows+result.FailedRows != result.TotalRows {
		t.Fatalf("rows do not add up: %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error, got %d", len(result.Errors))
	}
	if result.Errors[0].Row != 3 {
		t.Fatalf("expected failure reported on row 3, got %d", result.Errors[0].Row)
	}
	if !strings.Contains(result.Errors[0].Reason, "평가년도는 2023~2025 사이여야 합니다") {
		t.Fatalf("unexpected reason: %s", result.Errors[0].Reason)
	}
	if result.UploadLogID == "" {
		t.Fatalf("expected upload log id to be set")
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestIngestPublicationUpdatesExistingRecord(t *testing.T) {
	csvData := "publication_id,publication_date,college,department,title,first_author,co_authors,journal_name,journal_grade,impact_factor,project_linked\n" +
		"PUB-001,2024-03-15,공과대학,컴퓨터공학과,Deep Learning Advances,김교수,,Nature,SCIE,12.5,Y\n"

	steps := []*queryStep{
		beginStep(),
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `publication_list` WHERE publication_id = \\?"),
			args:    []driver.Value{"PUB-001"},
			columns: []string{"id", "publication_id"},
			rows:    [][]driver.Value{{"11111111-1111-1111-1111-111111111111", "PUB-001"}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `publication_list` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `upload_logs`"),
			result:  scriptedResult{rowsAffected: 1},
		},
		commitStep(),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewCSVIngestService(db)
	result, err := svc.Ingest(context.Background(), &CSVIngestInput{
		Data:       []byte(csvData),
		DataType:   models.DataTypePublication,
		UploadedBy: 7,
		FileName:   "pubs.csv",
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if result.SuccessRows != 1 || result.FailedRows != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestIngestRollsBackOnStorageFailure(t *testing.T) {
	csvData := kpiHeader + "2024,공과대학,컴퓨터공학과,85.5,10,2,5.2,3\n"

	steps := []*queryStep{
		beginStep(),
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `department_kpi`"),
			args:    []driver.Value{int64(2024), "컴퓨터공학과"},
			columns: []string{"id"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `department_kpi`"),
			err:     errors.New("connection lost"),
		},
		rollbackStep(),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewCSVIngestService(db)
	result, err := svc.Ingest(context.Background(), &CSVIngestInput{
		Data:       []byte(csvData),
		DataType:   models.DataTypeKPI,
		UploadedBy: 7,
		FileName:   "kpi.csv",
	})
	if err == nil || !strings.Contains(err.Error(), "connection lost") {
		t.Fatalf("expected storage error, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result on rollback, got %+v", result)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestIngestFallsBackToUpsertOnDuplicateKey(t *testing.T) {
	csvData := kpiHeader + "2024,공과대학,컴퓨터공학과,85.5,10,2,5.2,3\n"

	steps := []*queryStep{
		beginStep(),
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `department_kpi`"),
			args:    []driver.Value{int64(2024), "컴퓨터공학과"},
			columns: []string{"id"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `department_kpi`"),
			err:     errors.New("Error 1062 (23000): Duplicate entry '2024-컴퓨터공학과' for key 'uniq_year_department'"),
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("ON DUPLICATE KEY UPDATE"),
			result:  scriptedResult{rowsAffected: 2},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `upload_logs`"),
			result:  scriptedResult{rowsAffected: 1},
		},
		commitStep(),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewCSVIngestService(db)
	result, err := svc.Ingest(context.Background(), &CSVIngestInput{
		Data:       []byte(csvData),
		DataType:   models.DataTypeKPI,
		UploadedBy: 7,
		FileName:   "kpi.csv",
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if result.SuccessRows != 1 {
		t.Fatalf("expected 1 success row, got %d", result.SuccessRows)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestIngestLastRowWinsForDuplicateKeysInFile(t *testing.T) {
	csvData := kpiHeader +
		"2024,공과대학,컴퓨터공학과,70.0,5,1,1.0,1\n" +
		"2024,공과대학,컴퓨터공학과,85.5,10,2,5.2,3\n"

	// Only one lookup and one insert: the second row replaces the first in
	// the staging area before anything hits storage.
	steps := []*queryStep{
		beginStep(),
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `department_kpi`"),
			args:    []driver.Value{int64(2024), "컴퓨터공학과"},
			columns: []string{"id"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `department_kpi`"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `upload_logs`"),
			result:  scriptedResult{rowsAffected: 1},
		},
		commitStep(),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewCSVIngestService(db)
	result, err := svc.Ingest(context.Background(), &CSVIngestInput{
		Data:       []byte(csvData),
		DataType:   models.DataTypeKPI,
		UploadedBy: 7,
		FileName:   "kpi.csv",
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if result.SuccessRows != 2 || result.FailedRows != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
