package quizimport

import (
	"fmt"
	"reflect"
	"testing"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var rowHeaders = []string{"questionType", "question", "explanation", "A", "B", "C", "D", "correct", "audioPath"}

func buildTestRow(t *testing.T, cells []string, opts Options) Outcome {
	t.Helper()
	if opts.NewID == nil {
		opts.NewID = seqIDs()
	}
	return BuildRow(toRawRow(rowHeaders, cells), NewHeaderMap(rowHeaders), 2, opts)
}

func mustInvalid(t *testing.T, out Outcome) Invalid {
	t.Helper()
	inv, ok := out.(Invalid)
	if !ok {
		t.Fatalf("expected Invalid, got %#v", out)
	}
	return inv
}

func mustValid(t *testing.T, out Outcome) Valid {
	t.Helper()
	v, ok := out.(Valid)
	if !ok {
		t.Fatalf("expected Valid, got %#v", out)
	}
	return v
}

func TestBuildRowMinimalValid(t *testing.T) {
	out := buildTestRow(t, []string{"", " 日本の首都は？ ", "", "東京", "大阪", "", "", "A", "a.mp3"}, Options{})
	v := mustValid(t, out)

	q := v.Question
	if q.Text != "日本の首都は？" {
		t.Fatalf("unexpected text %q", q.Text)
	}
	if q.AudioPath != "a.mp3" {
		t.Fatalf("unexpected audio path %q", q.AudioPath)
	}
	if q.QuestionType != "" {
		t.Fatalf("question type must be omitted in QUIZ mode, got %q", q.QuestionType)
	}
	want := []Option{
		{ID: "id-4", Text: "東京", Correct: true},
		{ID: "id-5", Text: "大阪", Correct: false},
	}
	if !reflect.DeepEqual(q.Options, want) {
		t.Fatalf("unexpected options: %+v", q.Options)
	}
	if len(v.Draft.Options) != 2 || v.Draft.Options[1].Key != "B" {
		t.Fatalf("unexpected draft options: %+v", v.Draft.Options)
	}
	if v.Draft.CorrectIndex == nil || *v.Draft.CorrectIndex != 0 {
		t.Fatalf("expected draft correct index 0")
	}
}

func TestBuildRowIssues(t *testing.T) {
	msgs := DefaultMessages
	tests := []struct {
		name         string
		cells        []string
		mode         Mode
		defaultType  string
		wantIssues   []string
		wantDraftLen int
	}{
		{
			name:         "gap between options",
			cells:        []string{"", "Q", "", "one", "", "three", "", "A"},
			wantIssues:   []string{msgs.MissingOption("B")},
			wantDraftLen: 3,
		},
		{
			name:         "correct outside options",
			cells:        []string{"", "Q", "", "one", "two", "", "", "D"},
			wantIssues:   []string{msgs.CorrectOutOfRange},
			wantDraftLen: 4,
		},
		{
			name:         "correct zero",
			cells:        []string{"", "Q", "", "one", "two", "", "", "0"},
			wantIssues:   []string{msgs.CorrectOutOfRange},
			wantDraftLen: 2,
		},
		{
			name:         "correct on a gap",
			cells:        []string{"", "Q", "", "one", "", "three", "", "B"},
			wantIssues:   []string{msgs.MissingOption("B"), msgs.CorrectEmptyOption},
			wantDraftLen: 3,
		},
		{
			name:         "single option",
			cells:        []string{"", "Q", "", "one", "", "", "", "A"},
			wantIssues:   []string{msgs.NeedTwoOptions},
			wantDraftLen: 1,
		},
		{
			name:         "empty row fields",
			cells:        []string{"", "", "", "", "", "", "", ""},
			wantIssues:   []string{msgs.MissingContent, msgs.NeedTwoOptions, msgs.MissingCorrect},
			wantDraftLen: 0,
		},
		{
			name:         "no options but correct",
			cells:        []string{"", "Q", "", "", "", "", "", "C"},
			wantIssues:   []string{msgs.NeedTwoOptions},
			wantDraftLen: 3,
		},
		{
			name:         "garbage correct",
			cells:        []string{"", "Q", "", "one", "two", "", "", "maybe"},
			wantIssues:   []string{msgs.MissingCorrect},
			wantDraftLen: 2,
		},
		{
			name:         "jlpt without type",
			cells:        []string{"", "Q", "", "one", "two", "", "", "B"},
			mode:         ModeJLPT,
			wantIssues:   []string{msgs.MissingQuestionType},
			wantDraftLen: 2,
		},
		{
			name:         "every issue at once",
			cells:        []string{"", "", "", "", "two", "", "", "A"},
			mode:         ModeJLPT,
			wantIssues:   []string{msgs.MissingContent, msgs.MissingOption("A"), msgs.NeedTwoOptions, msgs.CorrectEmptyOption, msgs.MissingQuestionType},
			wantDraftLen: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := mustInvalid(t, buildTestRow(t, tc.cells, Options{Mode: tc.mode, DefaultQuestionType: tc.defaultType}))
			if !reflect.DeepEqual(inv.Issues, tc.wantIssues) {
				t.Fatalf("issues=%q, want %q", inv.Issues, tc.wantIssues)
			}
			if len(inv.Draft.Options) != tc.wantDraftLen {
				t.Fatalf("draft options=%d, want %d", len(inv.Draft.Options), tc.wantDraftLen)
			}
			if inv.RowNo != 2 || inv.Draft.RowNo != 2 {
				t.Fatalf("unexpected row numbers %d/%d", inv.RowNo, inv.Draft.RowNo)
			}
		})
	}
}

func TestBuildRowQuestionType(t *testing.T) {
	t.Run("jlpt default type", func(t *testing.T) {
		v := mustValid(t, buildTestRow(t, []string{"", "Q", "", "one", "two", "", "", "2"}, Options{Mode: ModeJLPT, DefaultQuestionType: "VOCAB"}))
		if v.Question.QuestionType != "VOCAB" {
			t.Fatalf("expected default type, got %q", v.Question.QuestionType)
		}
		if !v.Question.Options[1].Correct {
			t.Fatalf("expected option B correct")
		}
	})

	t.Run("jlpt explicit type wins", func(t *testing.T) {
		v := mustValid(t, buildTestRow(t, []string{"GRAMMAR", "Q", "", "one", "two", "", "", "A"}, Options{Mode: ModeJLPT, DefaultQuestionType: "VOCAB"}))
		if v.Question.QuestionType != "GRAMMAR" {
			t.Fatalf("expected explicit type, got %q", v.Question.QuestionType)
		}
	})

	t.Run("quiz keeps type on draft only", func(t *testing.T) {
		v := mustValid(t, buildTestRow(t, []string{"GRAMMAR", "Q", "", "one", "two", "", "", "A"}, Options{}))
		if v.Question.QuestionType != "" {
			t.Fatalf("expected no type on question, got %q", v.Question.QuestionType)
		}
		if v.Draft.QuestionType != "GRAMMAR" {
			t.Fatalf("expected draft type, got %q", v.Draft.QuestionType)
		}
	})
}

func TestBuildRowExactlyOneCorrect(t *testing.T) {
	cells := []string{"", "Q", "", "one", "two", "three", "four", ""}
	for _, correct := range []string{"A", "b", "3", "D", "4", "c; d", "2 1"} {
		cells[7] = correct
		v := mustValid(t, buildTestRow(t, cells, Options{}))
		n := 0
		for _, o := range v.Question.Options {
			if o.Text == "" {
				t.Fatalf("correct=%q: empty option text", correct)
			}
			if o.Correct {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("correct=%q: %d correct options", correct, n)
		}
		if len(v.Question.Options) < 2 {
			t.Fatalf("correct=%q: fewer than 2 options", correct)
		}
	}
}

func TestBuildRowGapInvariant(t *testing.T) {
	// any filled slot after an empty one must surface as an issue
	for gap := 0; gap < 3; gap++ {
		cells := []string{"", "Q", "", "one", "two", "three", "four", "D"}
		cells[3+gap] = ""
		inv := mustInvalid(t, buildTestRow(t, cells, Options{}))
		want := DefaultMessages.MissingOption(string(rune('A' + gap)))
		if inv.Issues[0] != want {
			t.Fatalf("gap at %d: issues=%q", gap, inv.Issues)
		}
	}
}

func TestBuildRowUsesMessages(t *testing.T) {
	msgs := DefaultMessages
	msgs.MissingContent = "Question text is missing."
	inv := mustInvalid(t, buildTestRow(t, []string{"", "", "", "one", "two", "", "", "A"}, Options{Messages: &msgs}))
	if len(inv.Issues) != 1 || inv.Issues[0] != "Question text is missing." {
		t.Fatalf("unexpected issues %q", inv.Issues)
	}
}

func TestBuildRowTruncatesPastZ(t *testing.T) {
	headers := []string{"question", "correct"}
	cells := []string{"Q", "Z"}
	for i := 0; i < MaxOptionSlots; i++ {
		headers = append(headers, string(rune('A'+i)))
		cells = append(cells, fmt.Sprintf("opt %d", i))
	}
	headers = append(headers, "optionAA")
	cells = append(cells, "ignored")

	v := mustValid(t, BuildRow(toRawRow(headers, cells), NewHeaderMap(headers), 2, Options{NewID: seqIDs()}))
	if len(v.Question.Options) != MaxOptionSlots {
		t.Fatalf("expected %d options, got %d", MaxOptionSlots, len(v.Question.Options))
	}
	if !v.Question.Options[25].Correct {
		t.Fatalf("expected Z correct")
	}
}
