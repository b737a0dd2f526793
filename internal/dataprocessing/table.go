package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "housingcli/internal/errors"
)

// RawTable is an untyped extract: a header row and string cells.
// Rows may be shorter or longer than the header.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the value at row, col or "" when the row is short.
func (t *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ReadFile loads a raw extract, choosing the reader by file extension.
func ReadFile(path string) (*RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, apperrors.NewNotFoundError(path, err)
			}
			return nil, apperrors.NewStorageError("open raw input", err)
		}
		defer f.Close()
		return ReadCSV(f)
	}
}

// ReadCSV reads a delimited extract. The first record is the header;
// a UTF-8 byte order mark on it is dropped.
func ReadCSV(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return &RawTable{}, nil
	}
	if err != nil {
		return nil, apperrors.NewParsingError("read csv header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := &RawTable{Headers: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("read csv row %d", len(table.Rows)+2), err)
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// ReadXLSX reads the first worksheet of a workbook.
func ReadXLSX(path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(path, err)
		}
		return nil, apperrors.NewParsingError("open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &RawTable{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read sheet %q", sheets[0]), err)
	}
	if len(rows) == 0 {
		return &RawTable{}, nil
	}
	return &RawTable{Headers: rows[0], Rows: rows[1:]}, nil
}
