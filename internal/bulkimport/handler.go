package bulkimport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/danh0999/Hokori-Learning-sub002/internal/app/apiresp"
	"github.com/danh0999/Hokori-Learning-sub002/internal/quizimport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc            importService
	maxUploadBytes int64
}

type importService interface {
	Import(ctx context.Context, in ImportInput) (*ImportOutput, error)
	ListDrafts(ctx context.Context, importID string, ro RowOptions) ([]DraftView, error)
	GetDraft(ctx context.Context, ref DraftRef, ro RowOptions) (*DraftView, error)
	FixDraft(ctx context.Context, in FixInput) (*FixResult, error)
	DiscardDraft(ctx context.Context, ref DraftRef) error
	Validate(ctx context.Context, in ValidateInput) (*FixResult, error)
	Template(ctx context.Context) ([]byte, error)
}

type apiResponse struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

type fixDraftRequest struct {
	Draft               quizimport.Draft `json:"draft"`
	Mode                string           `json:"mode"`
	DefaultQuestionType string           `json:"default_question_type"`
	Lang                string           `json:"lang"`
}

func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return newHandler(svc, maxUploadBytes)
}

func newHandler(svc importService, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Template(r.Context())
	if err != nil {
		log.Printf("quiz template: %v", err)
		writeJSON(w, r, http.StatusInternalServerError, apiResponse{OK: false, Error: "internal error"})
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", quizimport.TemplateFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, r, http.StatusRequestEntityTooLarge, apiResponse{OK: false, Error: "file too large"})
			return
		}
		if errors.Is(err, http.ErrNotMultipart) {
			writeJSON(w, r, http.StatusUnsupportedMediaType, apiResponse{OK: false, Error: "upload must be multipart/form-data"})
			return
		}
		writeJSON(w, r, http.StatusBadRequest, apiResponse{OK: false, Error: "invalid multipart form"})
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, apiResponse{OK: false, Error: "file field is required"})
		return
	}
	defer file.Close()

	if hdr.Size > h.maxUploadBytes {
		writeJSON(w, r, http.StatusRequestEntityTooLarge, apiResponse{OK: false, Error: "file too large"})
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, apiResponse{OK: false, Error: "cannot read file"})
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		writeJSON(w, r, http.StatusRequestEntityTooLarge, apiResponse{OK: false, Error: "file too large"})
		return
	}

	out, err := h.svc.Import(r.Context(), ImportInput{
		RowOptions: RowOptions{
			Mode:                r.FormValue("mode"),
			DefaultQuestionType: r.FormValue("default_question_type"),
			Lang:                r.FormValue("lang"),
			AcceptLanguage:      r.Header.Get("Accept-Language"),
		},
		FileName: hdr.Filename,
		Data:     data,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			writeJSON(w, r, http.StatusBadRequest, apiResponse{OK: false, Error: err.Error()})
		case errors.Is(err, ErrUnreadableFile):
			writeJSON(w, r, http.StatusUnprocessableEntity, apiResponse{OK: false, Error: ErrUnreadableFile.Error()})
		default:
			log.Printf("quiz import: %v", err)
			writeJSON(w, r, http.StatusInternalServerError, apiResponse{OK: false, Error: "internal error"})
		}
		return
	}

	writeJSON(w, r, http.StatusOK, apiResponse{OK: true, Data: out})
}

func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListDrafts(r.Context(), chi.URLParam(r, "importID"), rowOptionsFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, apiResponse{OK: true, Data: items})
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ref, ok := draftRefFromURL(w, r)
	if !ok {
		return
	}
	item, err := h.svc.GetDraft(r.Context(), ref, rowOptionsFromQuery(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, apiResponse{OK: true, Data: item})
}

func (h *Handler) FixDraft(w http.ResponseWriter, r *http.Request) {
	ref, ok := draftRefFromURL(w, r)
	if !ok {
		return
	}
	var req fixDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, apiResponse{OK: false, Error: "invalid request body"})
		return
	}

	res, err := h.svc.FixDraft(r.Context(), FixInput{
		DraftRef: ref,
		RowOptions: RowOptions{
			Mode:                req.Mode,
			DefaultQuestionType: req.DefaultQuestionType,
			Lang:                req.Lang,
			AcceptLanguage:      r.Header.Get("Accept-Language"),
		},
		Draft: req.Draft,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, apiResponse{OK: true, Data: res})
}

func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	ref, ok := draftRefFromURL(w, r)
	if !ok {
		return
	}
	if err := h.svc.DiscardDraft(r.Context(), ref); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, apiResponse{OK: true, Data: map[string]any{"deleted": true}})
}

func (h *Handler) ValidateDraft(w http.ResponseWriter, r *http.Request) {
	var req fixDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, apiResponse{OK: false, Error: "invalid request body"})
		return
	}
	res, err := h.svc.Validate(r.Context(), ValidateInput{
		RowOptions: RowOptions{
			Mode:                req.Mode,
			DefaultQuestionType: req.DefaultQuestionType,
			Lang:                req.Lang,
			AcceptLanguage:      r.Header.Get("Accept-Language"),
		},
		Draft: req.Draft,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, apiResponse{OK: true, Data: res})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeJSON(w, r, http.StatusBadRequest, apiResponse{OK: false, Error: err.Error()})
	case errors.Is(err, ErrDraftNotFound):
		writeJSON(w, r, http.StatusNotFound, apiResponse{OK: false, Error: err.Error()})
	default:
		log.Printf("quiz drafts: %v", err)
		writeJSON(w, r, http.StatusInternalServerError, apiResponse{OK: false, Error: "internal error"})
	}
}

func draftRefFromURL(w http.ResponseWriter, r *http.Request) (DraftRef, bool) {
	rowNo, err := strconv.Atoi(chi.URLParam(r, "rowNo"))
	if err != nil || rowNo <= 0 {
		writeJSON(w, r, http.StatusBadRequest, apiResponse{OK: false, Error: "invalid row number"})
		return DraftRef{}, false
	}
	return DraftRef{ImportID: chi.URLParam(r, "importID"), RowNo: rowNo}, true
}

func rowOptionsFromQuery(r *http.Request) RowOptions {
	q := r.URL.Query()
	return RowOptions{
		Mode:                strings.TrimSpace(q.Get("mode")),
		DefaultQuestionType: strings.TrimSpace(q.Get("default_question_type")),
		Lang:                strings.TrimSpace(q.Get("lang")),
		AcceptLanguage:      r.Header.Get("Accept-Language"),
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, payload apiResponse) {
	if payload.OK {
		apiresp.WriteOK(w, r, code, payload.Data)
		return
	}
	apiresp.WriteError(w, r, code, payload.Error)
}
