package quizimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var (
	zipMagic = []byte("PK\x03\x04")
	// Encrypted or legacy .xls workbooks are OLE compound files.
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// Sheet is the first sheet of an uploaded file as plain text cells.
type Sheet struct {
	Name  string
	Rows  [][]string
	Found bool
}

// ParseWorkbook reads the first sheet of an xlsx (or CSV) file and validates
// every data row. A missing or empty sheet is reported as a single needsFix
// entry for row 1; an error is returned only when the bytes cannot be read.
func ParseWorkbook(data []byte, opts Options) (*ImportResult, error) {
	sheet, err := ReadFirstSheet(data)
	if err != nil {
		return nil, err
	}
	return ParseSheet(sheet, opts), nil
}

// ReadFirstSheet decodes xlsx bytes, falling back to CSV for text input.
func ReadFirstSheet(data []byte) (Sheet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Sheet{Found: true}, nil
	}
	if bytes.HasPrefix(data, zipMagic) || bytes.HasPrefix(data, oleMagic) {
		return readXLSX(data)
	}
	if !utf8.Valid(data) {
		return Sheet{}, fmt.Errorf("%w: not a spreadsheet", ErrUnreadableFile)
	}
	return readCSV(data)
}

func readXLSX(data []byte) (Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: read rows: %v", ErrUnreadableFile, err)
	}
	return Sheet{Name: sheets[0], Rows: rows, Found: true}, nil
}

func readCSV(data []byte) (Sheet, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows := make([][]string, 0)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Sheet{}, fmt.Errorf("%w: csv: %v", ErrUnreadableFile, err)
		}
		rows = append(rows, rec)
	}
	return Sheet{Name: "csv", Rows: rows, Found: true}, nil
}

// ParseSheet validates the data rows of an already decoded sheet.
func ParseSheet(sheet Sheet, opts Options) *ImportResult {
	res := &ImportResult{
		ReadyQuestions: make([]Question, 0),
		NeedsFix:       make([]NeedsFix, 0),
	}
	msgs := opts.messages()
	if !sheet.Found {
		res.NeedsFix = append(res.NeedsFix, sheetIssue(msgs.NoSheet))
		return res
	}

	if len(sheet.Rows) == 0 {
		res.NeedsFix = append(res.NeedsFix, sheetIssue(msgs.EmptySheet))
		return res
	}
	headers := sheet.Rows[0]
	hm := NewHeaderMap(headers)

	seen := 0
	for i, cells := range sheet.Rows[1:] {
		if isBlank(cells) {
			continue
		}
		seen++
		rowNo := i + 2
		switch out := BuildRow(toRawRow(headers, cells), hm, rowNo, opts).(type) {
		case Valid:
			res.ReadyQuestions = append(res.ReadyQuestions, out.Question)
		case Invalid:
			res.NeedsFix = append(res.NeedsFix, NeedsFix{RowNo: out.RowNo, Issues: out.Issues, Draft: out.Draft})
		}
	}
	if seen == 0 {
		res.NeedsFix = append(res.NeedsFix, sheetIssue(msgs.EmptySheet))
	}
	return res
}

func sheetIssue(msg string) NeedsFix {
	return NeedsFix{RowNo: 1, Issues: []string{msg}, Draft: Draft{}}
}

// toRawRow keys cells by header text. Missing cells become "" and the first
// of two identical headers keeps its value.
func toRawRow(headers, cells []string) RawRow {
	row := make(RawRow, len(headers))
	for i, h := range headers {
		if _, ok := row[h]; ok {
			continue
		}
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		row[h] = v
	}
	return row
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
