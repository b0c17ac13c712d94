package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/danh0999/Hokori-Learning-sub002/internal/draft"
	"github.com/danh0999/Hokori-Learning-sub002/internal/quizimport"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnreadableFile = errors.New("file is not a readable spreadsheet")
	ErrDraftNotFound  = errors.New("draft not found")
)

type messageCatalog interface {
	Resolve(pref ...string) string
	Messages(lang string) quizimport.Messages
}

// ImportRecorder receives row counts of every finished import.
type ImportRecorder interface {
	RecordImport(mode string, ready, needsFix int)
}

type Service struct {
	store    draft.Store
	catalog  messageCatalog
	recorder ImportRecorder
	validate *validator.Validate
	newID    func() string
}

func NewService(store draft.Store, catalog messageCatalog, recorder ImportRecorder) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{
		store:    store,
		catalog:  catalog,
		recorder: recorder,
		validate: v,
		newID:    quizimport.NewID,
	}
}

// RowOptions are the per-call knobs shared by every operation.
type RowOptions struct {
	Mode                string `json:"mode" validate:"omitempty,oneof=QUIZ JLPT"`
	DefaultQuestionType string `json:"default_question_type" validate:"max=64"`
	Lang                string `json:"lang" validate:"max=35"`
	AcceptLanguage      string `json:"-"`
}

type ImportInput struct {
	RowOptions
	FileName string `json:"filename" validate:"max=255"`
	Data     []byte `json:"-"`
}

type ImportSummary struct {
	Ready    int `json:"ready"`
	NeedsFix int `json:"needs_fix"`
	Stored   int `json:"stored_drafts"`
}

type ImportOutput struct {
	ImportID string        `json:"import_id"`
	FileName string        `json:"filename,omitempty"`
	Mode     string        `json:"mode"`
	Lang     string        `json:"lang"`
	Summary  ImportSummary `json:"summary"`
	*quizimport.ImportResult
}

// DraftView is a stored draft with its current issues. Mode is the mode of
// the import the draft came from.
type DraftView struct {
	RowNo     int              `json:"rowNo"`
	Mode      string           `json:"mode"`
	Issues    []string         `json:"issues"`
	Draft     quizimport.Draft `json:"draft"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type importRef struct {
	ImportID string `json:"import_id" validate:"required,uuid"`
}

type DraftRef struct {
	ImportID string `json:"import_id" validate:"required,uuid"`
	RowNo    int    `json:"row_no" validate:"min=2"`
}

type FixInput struct {
	DraftRef
	RowOptions
	Draft quizimport.Draft `json:"draft"`
}

// FixResult is either {ok:true, question} or {ok:false, issues, draft}.
type FixResult struct {
	OK       bool                 `json:"ok"`
	Question *quizimport.Question `json:"question,omitempty"`
	Issues   []string             `json:"issues,omitempty"`
	Draft    *quizimport.Draft    `json:"draft,omitempty"`
}

type ValidateInput struct {
	RowOptions
	Draft quizimport.Draft `json:"draft"`
}

func (s *Service) Import(ctx context.Context, in ImportInput) (*ImportOutput, error) {
	in.Mode = normalizeMode(in.Mode)
	if err := s.check(in); err != nil {
		return nil, err
	}
	opts, lang := s.options(in.RowOptions)

	res, err := quizimport.ParseWorkbook(in.Data, opts)
	if err != nil {
		if errors.Is(err, quizimport.ErrUnreadableFile) {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
		}
		return nil, fmt.Errorf("parse workbook: %w", err)
	}

	out := &ImportOutput{
		ImportID:     s.newID(),
		FileName:     in.FileName,
		Mode:         string(opts.Mode),
		Lang:         lang,
		ImportResult: res,
		Summary: ImportSummary{
			Ready:    len(res.ReadyQuestions),
			NeedsFix: len(res.NeedsFix),
		},
	}
	for _, fix := range res.NeedsFix {
		// Sheet-level entries have no row to edit.
		if fix.Draft.RowNo == 0 {
			continue
		}
		if err := s.store.Put(ctx, draftKey(out.ImportID, fix.RowNo), record(fix.Draft, opts)); err != nil {
			return nil, fmt.Errorf("store draft row %d: %w", fix.RowNo, err)
		}
		out.Summary.Stored++
	}
	if s.recorder != nil {
		s.recorder.RecordImport(out.Mode, out.Summary.Ready, out.Summary.NeedsFix)
	}
	return out, nil
}

func (s *Service) ListDrafts(ctx context.Context, importID string, ro RowOptions) ([]DraftView, error) {
	ro.Mode = normalizeMode(ro.Mode)
	if err := s.check(importRef{ImportID: importID}); err != nil {
		return nil, err
	}
	if err := s.check(ro); err != nil {
		return nil, err
	}
	opts, _ := s.options(ro)

	entries, err := s.store.List(ctx, importID+"/")
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	out := make([]DraftView, 0, len(entries))
	for _, e := range entries {
		out = append(out, view(e, withStored(opts, e.Record)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RowNo < out[j].RowNo })
	return out, nil
}

func (s *Service) GetDraft(ctx context.Context, ref DraftRef, ro RowOptions) (*DraftView, error) {
	ro.Mode = normalizeMode(ro.Mode)
	if err := s.check(ref); err != nil {
		return nil, err
	}
	if err := s.check(ro); err != nil {
		return nil, err
	}
	opts, _ := s.options(ro)

	key := draftKey(ref.ImportID, ref.RowNo)
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, s.storeErr(err)
	}
	v := view(draft.Entry{Key: key, Record: rec}, withStored(opts, rec))
	return &v, nil
}

// FixDraft re-validates an edited draft under the options of its import. A
// valid draft leaves the store and comes back as a question; an invalid one
// replaces the stored draft.
func (s *Service) FixDraft(ctx context.Context, in FixInput) (*FixResult, error) {
	in.Mode = normalizeMode(in.Mode)
	if err := s.check(in.DraftRef); err != nil {
		return nil, err
	}
	if err := s.check(in.RowOptions); err != nil {
		return nil, err
	}
	key := draftKey(in.ImportID, in.RowNo)
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, s.storeErr(err)
	}

	opts, _ := s.options(in.RowOptions)
	opts = withStored(opts, rec)
	in.Draft.RowNo = in.RowNo
	switch out := quizimport.Revalidate(in.Draft, opts).(type) {
	case quizimport.Valid:
		if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, draft.ErrNotFound) {
			return nil, fmt.Errorf("delete draft: %w", err)
		}
		q := out.Question
		return &FixResult{OK: true, Question: &q}, nil
	case quizimport.Invalid:
		if err := s.store.Put(ctx, key, record(out.Draft, opts)); err != nil {
			return nil, fmt.Errorf("store draft: %w", err)
		}
		d := out.Draft
		return &FixResult{OK: false, Issues: out.Issues, Draft: &d}, nil
	default:
		return nil, fmt.Errorf("unexpected outcome %T", out)
	}
}

func (s *Service) DiscardDraft(ctx context.Context, ref DraftRef) error {
	if err := s.check(ref); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, draftKey(ref.ImportID, ref.RowNo)); err != nil {
		return s.storeErr(err)
	}
	return nil
}

// Validate re-validates a draft without touching the store.
func (s *Service) Validate(_ context.Context, in ValidateInput) (*FixResult, error) {
	in.Mode = normalizeMode(in.Mode)
	if err := s.check(in.RowOptions); err != nil {
		return nil, err
	}
	opts, _ := s.options(in.RowOptions)
	switch out := quizimport.Revalidate(in.Draft, opts).(type) {
	case quizimport.Valid:
		q := out.Question
		return &FixResult{OK: true, Question: &q}, nil
	case quizimport.Invalid:
		d := out.Draft
		return &FixResult{OK: false, Issues: out.Issues, Draft: &d}, nil
	default:
		return nil, fmt.Errorf("unexpected outcome %T", out)
	}
}

func (s *Service) Template(_ context.Context) ([]byte, error) {
	data, err := quizimport.Template()
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return data, nil
}

func (s *Service) options(ro RowOptions) (quizimport.Options, string) {
	mode, _ := quizimport.ParseMode(ro.Mode)
	opts := quizimport.Options{
		Mode:                mode,
		DefaultQuestionType: strings.TrimSpace(ro.DefaultQuestionType),
		NewID:               s.newID,
	}
	lang := ""
	if s.catalog != nil {
		lang = s.catalog.Resolve(ro.Lang, ro.AcceptLanguage)
		msgs := s.catalog.Messages(lang)
		opts.Messages = &msgs
	}
	return opts, lang
}

func (s *Service) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %s", ErrInvalidInput, fe.Field(), describeTag(fe))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

func (s *Service) storeErr(err error) error {
	if errors.Is(err, draft.ErrNotFound) {
		return ErrDraftNotFound
	}
	return fmt.Errorf("draft store: %w", err)
}

// withStored replaces the request's mode and default question type with the
// ones saved at import time. Records without a saved mode keep the request's.
func withStored(opts quizimport.Options, rec draft.Record) quizimport.Options {
	if rec.Mode == "" {
		return opts
	}
	if mode, ok := quizimport.ParseMode(rec.Mode); ok {
		opts.Mode = mode
		opts.DefaultQuestionType = rec.DefaultQuestionType
	}
	return opts
}

func record(d quizimport.Draft, opts quizimport.Options) draft.Record {
	return draft.Record{Draft: d, Mode: string(opts.Mode), DefaultQuestionType: opts.DefaultQuestionType}
}

func view(e draft.Entry, opts quizimport.Options) DraftView {
	v := DraftView{
		RowNo:     e.Draft.RowNo,
		Mode:      string(opts.Mode),
		Draft:     e.Draft,
		UpdatedAt: e.UpdatedAt,
		Issues:    make([]string, 0),
	}
	if inv, ok := quizimport.Revalidate(e.Draft, opts).(quizimport.Invalid); ok {
		v.Issues = inv.Issues
	}
	return v
}

func normalizeMode(m string) string {
	return strings.ToUpper(strings.TrimSpace(m))
}

func draftKey(importID string, rowNo int) string {
	return importID + "/" + strconv.Itoa(rowNo)
}
