package quizimport

// candidate is the common input of row building and draft re-validation.
type candidate struct {
	rowNo        int
	content      string
	explanation  string
	questionType string
	audioPath    string
	imagePath    string
	imageAlt     string
	correctRaw   string
	correctIdx   int
	hasCorrect   bool
	slots        []Slot
	// optionIDs keeps ids the caller already showed for a slot.
	optionIDs []string
}

// BuildRow validates one sheet row. The returned Outcome always carries a
// draft; only a Valid outcome carries a Question.
func BuildRow(row RawRow, hm HeaderMap, rowNo int, opts Options) Outcome {
	questionType := hm.text(row, FieldQuestionType)
	if questionType == "" {
		questionType = opts.DefaultQuestionType
	}
	correctRaw := hm.text(row, FieldCorrect)
	correctIdx, hasCorrect := ParseCorrect(correctRaw)

	return evaluate(candidate{
		rowNo:        rowNo,
		content:      hm.text(row, FieldContent),
		explanation:  hm.text(row, FieldExplanation),
		questionType: questionType,
		audioPath:    hm.text(row, FieldAudioPath),
		imagePath:    hm.text(row, FieldImagePath),
		imageAlt:     hm.text(row, FieldImageAltText),
		correctRaw:   correctRaw,
		correctIdx:   correctIdx,
		hasCorrect:   hasCorrect,
		slots:        ExtractSlots(row, hm),
	}, opts)
}

func evaluate(c candidate, opts Options) Outcome {
	msgs := opts.messages()
	last := lastFilled(c.slots)

	draftEnd := last
	if c.hasCorrect && c.correctIdx > draftEnd {
		draftEnd = c.correctIdx
	}
	if draftEnd >= MaxOptionSlots {
		draftEnd = MaxOptionSlots - 1
	}
	draft := buildDraft(c, draftEnd, opts)

	issues := make([]string, 0)
	if c.content == "" {
		issues = append(issues, msgs.MissingContent)
	}
	if last < 0 {
		issues = append(issues, msgs.NeedTwoOptions)
	} else {
		filled := 0
		for i := 0; i <= last; i++ {
			if c.slots[i].Text == "" {
				issues = append(issues, msgs.MissingOption(c.slots[i].Key))
				continue
			}
			filled++
		}
		if filled < 2 {
			issues = append(issues, msgs.NeedTwoOptions)
		}
	}
	switch {
	case !c.hasCorrect:
		issues = append(issues, msgs.MissingCorrect)
	case last < 0:
	case c.correctIdx < 0 || c.correctIdx > last:
		issues = append(issues, msgs.CorrectOutOfRange)
	case c.slots[c.correctIdx].Text == "":
		issues = append(issues, msgs.CorrectEmptyOption)
	}
	if opts.Mode == ModeJLPT && c.questionType == "" {
		issues = append(issues, msgs.MissingQuestionType)
	}

	if len(issues) > 0 {
		return Invalid{RowNo: c.rowNo, Issues: issues, Draft: draft}
	}

	q := Question{
		ID:           opts.newID(),
		Text:         c.content,
		Explanation:  c.explanation,
		AudioPath:    c.audioPath,
		ImagePath:    c.imagePath,
		ImageAltText: c.imageAlt,
		Options:      make([]Option, 0, last+1),
	}
	if opts.Mode == ModeJLPT {
		q.QuestionType = c.questionType
	}
	for i := 0; i <= last; i++ {
		q.Options = append(q.Options, Option{
			ID:      opts.newID(),
			Text:    c.slots[i].Text,
			Correct: i == c.correctIdx,
		})
	}
	return Valid{RowNo: c.rowNo, Question: q, Draft: draft}
}

func buildDraft(c candidate, draftEnd int, opts Options) Draft {
	d := Draft{
		RowNo:        c.rowNo,
		QuestionType: c.questionType,
		Content:      c.content,
		Explanation:  c.explanation,
		Correct:      c.correctRaw,
		AudioPath:    c.audioPath,
		ImagePath:    c.imagePath,
		ImageAltText: c.imageAlt,
	}
	if c.hasCorrect {
		idx := c.correctIdx
		d.CorrectIndex = &idx
	}
	if draftEnd < 0 {
		return d
	}
	d.Options = make([]DraftOption, 0, draftEnd+1)
	for i := 0; i <= draftEnd; i++ {
		opt := DraftOption{Key: slotKey(i), ID: ""}
		if i < len(c.optionIDs) {
			opt.ID = c.optionIDs[i]
		}
		if opt.ID == "" {
			opt.ID = opts.newID()
		}
		if i < len(c.slots) {
			opt.Text = c.slots[i].Text
		}
		d.Options = append(d.Options, opt)
	}
	return d
}
