package quizimport

import "testing"

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		" Question ":     "question",
		"option_A":       "optiona",
		"Option - b":     "optionb",
		"Image Alt Text": "imagealttext",
		"ＱＵＥＳＴＩＯＮ":       "question",
		"Câu hỏi":        "câuhỏi",
		"問題":             "問題",
		"":               "",
	}
	for in, want := range tests {
		if got := NormalizeHeader(in); got != want {
			t.Fatalf("NormalizeHeader(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestNormalizeHeaderComposesVietnamese(t *testing.T) {
	decomposed := "ca\u0302u ho\u0309i"
	if NormalizeHeader(decomposed) != NormalizeHeader("câu hỏi") {
		t.Fatalf("expected decomposed and composed headers to match")
	}
}

func TestHeaderMapFirstWins(t *testing.T) {
	hm := NewHeaderMap([]string{"Question", "question ", "", "A"})
	if hm["question"] != "Question" {
		t.Fatalf("expected first header to win, got %q", hm["question"])
	}
	if _, ok := hm[""]; ok {
		t.Fatalf("empty header must not be mapped")
	}
	if len(hm) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(hm))
	}
}

func TestPickAliases(t *testing.T) {
	hm := NewHeaderMap([]string{"Nội dung", "Đáp án", "問題タイプ"})
	row := RawRow{"Nội dung": "Xin chào", "Đáp án": "B", "問題タイプ": "GRAMMAR"}

	if v, ok := hm.PickField(row, FieldContent); !ok || v != "Xin chào" {
		t.Fatalf("content: got %q ok=%v", v, ok)
	}
	if v, ok := hm.PickField(row, FieldCorrect); !ok || v != "B" {
		t.Fatalf("correct: got %q ok=%v", v, ok)
	}
	if v, ok := hm.PickField(row, FieldQuestionType); !ok || v != "GRAMMAR" {
		t.Fatalf("questionType: got %q ok=%v", v, ok)
	}
	if _, ok := hm.PickField(row, FieldExplanation); ok {
		t.Fatalf("explanation column is absent, expected ok=false")
	}
}

func TestPickUsesFirstPresentAlias(t *testing.T) {
	hm := NewHeaderMap([]string{"text", "question"})
	row := RawRow{"text": "from text", "question": ""}
	v, ok := hm.PickField(row, FieldContent)
	if !ok || v != "" {
		t.Fatalf("expected the question column to win even when empty, got %q ok=%v", v, ok)
	}
}

func TestExtractSlotsKeepsGaps(t *testing.T) {
	hm := NewHeaderMap([]string{"Option A", "b", "optionD"})
	row := RawRow{"Option A": " one ", "b": "two", "optionD": "four"}
	slots := ExtractSlots(row, hm)

	if len(slots) != MaxOptionSlots {
		t.Fatalf("expected %d slots, got %d", MaxOptionSlots, len(slots))
	}
	if slots[0].Text != "one" || slots[1].Text != "two" || slots[2].Text != "" || slots[3].Text != "four" {
		t.Fatalf("unexpected slots: %+v", slots[:4])
	}
	for i, s := range slots {
		if s.Key != string(rune('A'+i)) {
			t.Fatalf("slot %d has key %q", i, s.Key)
		}
	}
	if got := lastFilled(slots); got != 3 {
		t.Fatalf("expected last=3, got %d", got)
	}
	if got := lastFilled(make([]Slot, 3)); got != -1 {
		t.Fatalf("expected last=-1 for empty slots, got %d", got)
	}
}
