package quizimport

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func xlsxBytes(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if sheet != "" {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	} else {
		sheet = f.GetSheetName(0)
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row := r
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf.Bytes()
}

func TestParseWorkbookPartitionsRows(t *testing.T) {
	data := xlsxBytes(t, "Câu hỏi", [][]any{
		{"Question", "Option A", "Option B", "Option C", "Correct"},
		{"Q1", "a", "b", "", "A"},
		{"Q2", "a", "", "c", "C"},
		{},
		{"Q4", "a", "b", "c", 3},
	})

	res, err := ParseWorkbook(data, Options{NewID: seqIDs()})
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(res.ReadyQuestions) != 2 {
		t.Fatalf("expected 2 ready questions, got %d", len(res.ReadyQuestions))
	}
	if res.ReadyQuestions[0].Text != "Q1" || res.ReadyQuestions[1].Text != "Q4" {
		t.Fatalf("row order not preserved: %+v", res.ReadyQuestions)
	}
	if !res.ReadyQuestions[1].Options[2].Correct {
		t.Fatalf("numeric correct cell should point at C")
	}
	if len(res.NeedsFix) != 1 {
		t.Fatalf("expected 1 row to fix, got %d", len(res.NeedsFix))
	}
	fix := res.NeedsFix[0]
	if fix.RowNo != 3 {
		t.Fatalf("expected sheet row 3, got %d", fix.RowNo)
	}
	if len(fix.Issues) != 1 || fix.Issues[0] != DefaultMessages.MissingOption("B") {
		t.Fatalf("unexpected issues %q", fix.Issues)
	}
}

func TestParseWorkbookEmptySheet(t *testing.T) {
	tests := map[string][]byte{
		"header only": xlsxBytes(t, "", [][]any{{"question", "A", "B", "correct"}}),
		"no rows":     xlsxBytes(t, "", nil),
		"blank rows":  xlsxBytes(t, "", [][]any{{"question", "A"}, {"", " "}}),
		"empty bytes": nil,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := ParseWorkbook(data, Options{})
			if err != nil {
				t.Fatalf("ParseWorkbook: %v", err)
			}
			raw, _ := json.Marshal(res)
			want := `{"readyQuestions":[],"needsFix":[{"rowNo":1,"issues":["Sheet trống."],"draft":{}}]}`
			if string(raw) != want {
				t.Fatalf("got %s, want %s", raw, want)
			}
		})
	}
}

func TestParseSheetNoSheet(t *testing.T) {
	res := ParseSheet(Sheet{}, Options{})
	if len(res.NeedsFix) != 1 || res.NeedsFix[0].Issues[0] != DefaultMessages.NoSheet || res.NeedsFix[0].RowNo != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.ReadyQuestions == nil {
		t.Fatalf("ready questions must be non-nil")
	}
}

func TestParseWorkbookCSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFquestion,A,B,correct\n\"Xin, chào\",một,hai,2\n,,,\nQ3,x,,A\n")
	res, err := ParseWorkbook(data, Options{NewID: seqIDs()})
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(res.ReadyQuestions) != 1 || res.ReadyQuestions[0].Text != "Xin, chào" {
		t.Fatalf("unexpected ready questions %+v", res.ReadyQuestions)
	}
	if !res.ReadyQuestions[0].Options[1].Correct {
		t.Fatalf("expected option B correct")
	}
	if len(res.NeedsFix) != 1 || res.NeedsFix[0].RowNo != 4 {
		t.Fatalf("unexpected needsFix %+v", res.NeedsFix)
	}
}

func TestParseWorkbookShortRows(t *testing.T) {
	data := []byte("question,A,B,C,correct,explanation\nQ,x,y\n")
	res, err := ParseWorkbook(data, Options{})
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(res.NeedsFix) != 1 {
		t.Fatalf("expected one row to fix, got %+v", res)
	}
	if got := res.NeedsFix[0].Issues; len(got) != 1 || got[0] != DefaultMessages.MissingCorrect {
		t.Fatalf("unexpected issues %q", got)
	}
}

func TestParseWorkbookUnreadable(t *testing.T) {
	for name, data := range map[string][]byte{
		"broken zip": append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0x01}, 64)...),
		"binary":     {0xff, 0xfe, 0x00, 0x81, 0x90},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseWorkbook(data, Options{})
			if !errors.Is(err, ErrUnreadableFile) {
				t.Fatalf("expected ErrUnreadableFile, got %v", err)
			}
		})
	}
}

func TestParseWorkbookReadsFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	first := f.GetSheetName(0)
	_ = f.SetSheetRow(first, "A1", &[]any{"question", "A", "B", "correct"})
	_ = f.SetSheetRow(first, "A2", &[]any{"first", "x", "y", "A"})
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	_ = f.SetSheetRow("Other", "A1", &[]any{"question", "A", "B", "correct"})
	_ = f.SetSheetRow("Other", "A2", &[]any{"second", "x", "y", "A"})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	sheet, err := ReadFirstSheet(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadFirstSheet: %v", err)
	}
	if sheet.Name != first {
		t.Fatalf("expected sheet %q, got %q", first, sheet.Name)
	}
	res := ParseSheet(sheet, Options{})
	if len(res.ReadyQuestions) != 1 || res.ReadyQuestions[0].Text != "first" {
		t.Fatalf("unexpected result %+v", res)
	}
}
