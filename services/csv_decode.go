package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Row is one CSV data row keyed by the exact header text. Headers may be
// non-ASCII; empty cells stay empty strings so validators decide how to
// coerce them.
type Row map[string]string

// CSVDecodeError reports an unreadable CSV byte stream. The whole upload
// fails before any row is processed.
type CSVDecodeError struct {
	Err error
}

func (e *CSVDecodeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("CSV 파일 파싱 실패: %v", e.Err)
}

func (e *CSVDecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeCSV turns raw upload bytes into the header row and an ordered
// sequence of header-keyed data rows. All values are kept as text.
func DecodeCSV(data []byte) ([]string, []Row, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) == 0 {
		return nil, nil, &CSVDecodeError{Err: errors.New("빈 파일입니다")}
	}
	if !utf8.Valid(trimmed) {
		return nil, nil, &CSVDecodeError{Err: errors.New("UTF-8 인코딩이 아닙니다")}
	}

	reader := csv.NewReader(bytes.NewReader(trimmed))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, &CSVDecodeError{Err: err}
	}
	if len(records) == 0 {
		return nil, nil, &CSVDecodeError{Err: errors.New("헤더 행이 없습니다")}
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return headers, rows, nil
}

// dataRowNumber converts a 0-based data row index into the user-facing row
// number: the header occupies line 1, so the first data row reports as 2.
func dataRowNumber(index int) int {
	return index + 2
}
