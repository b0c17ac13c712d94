package quizimport

import "strings"

// Revalidate runs the row rules over a draft the user edited. Slots come from
// the draft's own option list, re-keyed by position. CorrectIndex wins over
// the raw Correct token, and the returned draft carries the token that matches
// the index. A Valid result gets fresh question and option ids.
func Revalidate(d Draft, opts Options) Outcome {
	n := len(d.Options)
	if n > MaxOptionSlots {
		n = MaxOptionSlots
	}
	slots := make([]Slot, n)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		slots[i] = Slot{Key: slotKey(i), Text: strings.TrimSpace(d.Options[i].Text)}
		ids[i] = d.Options[i].ID
	}

	correctRaw := strings.TrimSpace(d.Correct)
	var (
		correctIdx int
		hasCorrect bool
	)
	if d.CorrectIndex != nil {
		correctIdx, hasCorrect = *d.CorrectIndex, true
		// The text token follows the index when they disagree.
		if idx, ok := ParseCorrect(correctRaw); !ok || idx != correctIdx {
			correctRaw = correctToken(correctIdx)
		}
	} else {
		correctIdx, hasCorrect = ParseCorrect(correctRaw)
	}

	questionType := strings.TrimSpace(d.QuestionType)
	if questionType == "" {
		questionType = opts.DefaultQuestionType
	}

	return evaluate(candidate{
		rowNo:        d.RowNo,
		content:      strings.TrimSpace(d.Content),
		explanation:  strings.TrimSpace(d.Explanation),
		questionType: questionType,
		audioPath:    strings.TrimSpace(d.AudioPath),
		imagePath:    strings.TrimSpace(d.ImagePath),
		imageAlt:     strings.TrimSpace(d.ImageAltText),
		correctRaw:   correctRaw,
		correctIdx:   correctIdx,
		hasCorrect:   hasCorrect,
		slots:        slots,
		optionIDs:    ids,
	}, opts)
}

// correctToken is the letter for an index in A..Z, or "" outside it.
func correctToken(idx int) string {
	if idx < 0 || idx >= MaxOptionSlots {
		return ""
	}
	return slotKey(idx)
}
