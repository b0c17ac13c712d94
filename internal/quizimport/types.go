package quizimport

import (
	"errors"
	"strings"
)

var ErrUnreadableFile = errors.New("unreadable spreadsheet")

type Mode string

const (
	ModeQuiz Mode = "QUIZ"
	ModeJLPT Mode = "JLPT"
)

// ParseMode accepts any casing. An empty value means QUIZ.
func ParseMode(v string) (Mode, bool) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", string(ModeQuiz):
		return ModeQuiz, true
	case string(ModeJLPT):
		return ModeJLPT, true
	default:
		return "", false
	}
}

// Options controls a single parse or re-validation call.
type Options struct {
	Mode                Mode
	DefaultQuestionType string
	// Messages overrides the built-in Vietnamese issue texts.
	Messages *Messages
	// NewID overrides id generation, mostly for tests.
	NewID func() string
}

func (o Options) messages() *Messages {
	if o.Messages != nil {
		return o.Messages
	}
	return &DefaultMessages
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return NewID()
}

// RawRow maps the original header text of a sheet to the cell text of one row.
type RawRow map[string]string

type Slot struct {
	Key  string
	Text string
}

type DraftOption struct {
	ID   string `json:"id,omitempty"`
	Key  string `json:"key,omitempty"`
	Text string `json:"text"`
}

// Draft is the editable form of a row. It may be invalid.
type Draft struct {
	RowNo        int           `json:"rowNo,omitempty"`
	QuestionType string        `json:"questionType,omitempty"`
	Content      string        `json:"content,omitempty"`
	Explanation  string        `json:"explanation,omitempty"`
	Options      []DraftOption `json:"options,omitempty"`
	Correct      string        `json:"correct,omitempty"`
	CorrectIndex *int          `json:"correctIndex,omitempty"`
	AudioPath    string        `json:"audioPath,omitempty"`
	ImagePath    string        `json:"imagePath,omitempty"`
	ImageAltText string        `json:"imageAltText,omitempty"`
}

type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question is a validated question: at least two options, no empty option
// text, exactly one correct option.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Explanation  string   `json:"explanation"`
	AudioPath    string   `json:"audioPath,omitempty"`
	ImagePath    string   `json:"imagePath,omitempty"`
	ImageAltText string   `json:"imageAltText,omitempty"`
	QuestionType string   `json:"questionType,omitempty"`
	Options      []Option `json:"options"`
}

// Outcome is either Valid or Invalid.
type Outcome interface {
	Row() int
	DraftQuestion() Draft
	isOutcome()
}

type Valid struct {
	RowNo    int
	Question Question
	Draft    Draft
}

type Invalid struct {
	RowNo  int
	Issues []string
	Draft  Draft
}

func (v Valid) Row() int             { return v.RowNo }
func (v Valid) DraftQuestion() Draft { return v.Draft }
func (Valid) isOutcome()             {}

func (v Invalid) Row() int             { return v.RowNo }
func (v Invalid) DraftQuestion() Draft { return v.Draft }
func (Invalid) isOutcome()             {}

type NeedsFix struct {
	RowNo  int      `json:"rowNo"`
	Issues []string `json:"issues"`
	Draft  Draft    `json:"draft"`
}

type ImportResult struct {
	ReadyQuestions []Question `json:"readyQuestions"`
	NeedsFix       []NeedsFix `json:"needsFix"`
}
