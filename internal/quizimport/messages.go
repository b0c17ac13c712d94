package quizimport

import "fmt"

// Messages holds the human-readable issue texts attached to rows.
type Messages struct {
	MissingContent      string
	NeedTwoOptions      string
	MissingOption       func(column string) string
	MissingCorrect      string
	CorrectOutOfRange   string
	CorrectEmptyOption  string
	MissingQuestionType string
	NoSheet             string
	EmptySheet          string
}

var DefaultMessages = Messages{
	MissingContent: "Thiếu nội dung câu hỏi.",
	NeedTwoOptions: "Cần ít nhất 2 đáp án.",
	MissingOption: func(column string) string {
		return fmt.Sprintf("Thiếu đáp án ở cột %s.", column)
	},
	MissingCorrect:      "Thiếu hoặc sai cột correct.",
	CorrectOutOfRange:   "Đáp án đúng nằm ngoài các lựa chọn hiện có.",
	CorrectEmptyOption:  "Đáp án đúng trỏ tới một lựa chọn trống.",
	MissingQuestionType: "Thiếu loại câu hỏi (questionType).",
	NoSheet:             "Không tìm thấy sheet trong file.",
	EmptySheet:          "Sheet trống.",
}
