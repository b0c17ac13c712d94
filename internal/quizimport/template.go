package quizimport

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	TemplateSheet    = "Questions"
	TemplateFileName = "quiz_template.xlsx"
)

// TemplateHeader is the column order of the downloadable template.
var TemplateHeader = []string{
	"questionType", "question", "explanation",
	"A", "B", "C", "D", "correct",
	"audioPath", "imagePath", "imageAltText",
}

var templateExample = []string{
	"VOCAB", "「たべる」の意味はどれですか。", "たべる = ăn",
	"ăn", "uống", "ngủ", "đi", "A",
	"", "", "",
}

// Template renders the import template with one example row.
func Template() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), TemplateSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", toAny(TemplateHeader)); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetSheetRow(TemplateSheet, "A2", toAny(templateExample)); err != nil {
		return nil, fmt.Errorf("write example: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(TemplateHeader))
	_ = f.SetCellStyle(TemplateSheet, "A1", lastCol+"1", bold)
	_ = f.SetColWidth(TemplateSheet, "A", lastCol, 18)
	_ = f.SetColWidth(TemplateSheet, "B", "C", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func toAny(values []string) *[]any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return &out
}
