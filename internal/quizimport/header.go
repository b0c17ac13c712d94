package quizimport

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

type Field string

const (
	FieldContent      Field = "content"
	FieldExplanation  Field = "explanation"
	FieldQuestionType Field = "questionType"
	FieldCorrect      Field = "correct"
	FieldAudioPath    Field = "audioPath"
	FieldImagePath    Field = "imagePath"
	FieldImageAltText Field = "imageAltText"
)

// fieldAliases lists accepted column headers per field, checked in order.
// Entries are normalized with NormalizeHeader before lookup.
var fieldAliases = map[Field][]string{
	FieldContent:      {"question", "content", "text", "cauhoi", "câu hỏi", "noidung", "nội dung", "問題", "質問", "問題文"},
	FieldExplanation:  {"explanation", "explain", "giaithich", "giải thích", "解説", "説明"},
	FieldQuestionType: {"questionType", "type", "loaicauhoi", "loại câu hỏi", "dạng", "問題タイプ", "種類"},
	FieldCorrect:      {"correct", "correctAnswer", "answer", "dapan", "đáp án", "đáp án đúng", "正解", "答え"},
	FieldAudioPath:    {"audioPath", "audio", "audioUrl", "âm thanh", "音声"},
	FieldImagePath:    {"imagePath", "image", "imageUrl", "hình ảnh", "画像"},
	FieldImageAltText: {"imageAltText", "imageAlt", "altText", "alt"},
}

// NormalizeHeader folds width, lowercases and drops whitespace, '_' and '-'.
// Vietnamese headers are composed to NFC so decomposed diacritics still match.
func NormalizeHeader(h string) string {
	h = norm.NFC.String(width.Fold.String(strings.TrimSpace(h)))
	h = strings.ToLower(h)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			return -1
		}
		return r
	}, h)
}

// HeaderMap maps a normalized header key to the header text used in RawRow.
type HeaderMap map[string]string

// NewHeaderMap builds the map from a sheet's header cells. The first column
// wins when two headers normalize to the same key.
func NewHeaderMap(headers []string) HeaderMap {
	hm := make(HeaderMap, len(headers))
	for _, h := range headers {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, ok := hm[key]; ok {
			continue
		}
		hm[key] = h
	}
	return hm
}

// Pick returns the cell of the first alias whose column exists in the sheet.
func (hm HeaderMap) Pick(row RawRow, aliases ...string) (string, bool) {
	for _, alias := range aliases {
		header, ok := hm[NormalizeHeader(alias)]
		if !ok {
			continue
		}
		if v, ok := row[header]; ok {
			return v, true
		}
	}
	return "", false
}

func (hm HeaderMap) PickField(row RawRow, f Field) (string, bool) {
	return hm.Pick(row, fieldAliases[f]...)
}

func (hm HeaderMap) text(row RawRow, f Field) string {
	v, _ := hm.PickField(row, f)
	return strings.TrimSpace(v)
}
