package i18n

import (
	"testing"

	"github.com/danh0999/Hokori-Learning-sub002/internal/quizimport"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(DefaultLang)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func TestVietnameseMatchesBuiltIn(t *testing.T) {
	got := newTestCatalog(t).Messages("vi")
	want := quizimport.DefaultMessages

	pairs := [][2]string{
		{got.MissingContent, want.MissingContent},
		{got.NeedTwoOptions, want.NeedTwoOptions},
		{got.MissingOption("C"), want.MissingOption("C")},
		{got.MissingCorrect, want.MissingCorrect},
		{got.CorrectOutOfRange, want.CorrectOutOfRange},
		{got.CorrectEmptyOption, want.CorrectEmptyOption},
		{got.MissingQuestionType, want.MissingQuestionType},
		{got.NoSheet, want.NoSheet},
		{got.EmptySheet, want.EmptySheet},
	}
	for _, p := range pairs {
		if p[0] != p[1] {
			t.Errorf("got %q, want %q", p[0], p[1])
		}
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	c := newTestCatalog(t)
	if got := c.Messages("en").MissingOption("B"); got != "Option in column B is missing." {
		t.Errorf("en MissingOption = %q", got)
	}
	if got := c.Messages("ja").MissingOption("B"); got != "B列の選択肢がありません。" {
		t.Errorf("ja MissingOption = %q", got)
	}
}

func TestResolve(t *testing.T) {
	c := newTestCatalog(t)
	tests := []struct {
		name string
		pref []string
		want string
	}{
		{name: "nothing", pref: nil, want: "vi"},
		{name: "exact", pref: []string{"ja"}, want: "ja"},
		{name: "region", pref: []string{"en-US"}, want: "en"},
		{name: "accept header", pref: []string{"", "fr-FR,ja;q=0.8,en;q=0.5"}, want: "ja"},
		{name: "unsupported", pref: []string{"fr"}, want: "vi"},
		{name: "garbage then header", pref: []string{"???", "en"}, want: "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Resolve(tc.pref...); got != tc.want {
				t.Fatalf("Resolve(%q)=%q, want %q", tc.pref, got, tc.want)
			}
		})
	}
}

func TestUnsupportedFallsBack(t *testing.T) {
	got := newTestCatalog(t).Messages("de").EmptySheet
	if got != "Sheet trống." {
		t.Errorf("EmptySheet = %q, want default", got)
	}
}

func TestLanguages(t *testing.T) {
	langs := newTestCatalog(t).Languages()
	if len(langs) != 3 || langs[0] != "vi" {
		t.Fatalf("unexpected languages %v", langs)
	}
}
