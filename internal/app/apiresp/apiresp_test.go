package apiresp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteErrorUsesStatusCode(t *testing.T) {
	cases := map[int]string{
		http.StatusRequestEntityTooLarge: "payload_too_large",
		http.StatusUnprocessableEntity:   "unreadable_file",
		http.StatusTeapot:                "error",
	}
	for status, code := range cases {
		w := httptest.NewRecorder()
		WriteError(w, httptest.NewRequest(http.MethodGet, "/", nil), status, "")

		if w.Code != status {
			t.Fatalf("expected %d, got %d", status, w.Code)
		}
		var env Envelope
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.OK || env.Error == nil {
			t.Fatalf("expected error envelope, got %+v", env)
		}
		if env.Error.Code != code {
			t.Fatalf("status %d: expected code %q, got %q", status, code, env.Error.Code)
		}
		if env.Error.Message != http.StatusText(status) {
			t.Fatalf("expected default message, got %q", env.Error.Message)
		}
	}
}

func TestWriteOKOmitsError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteOK(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, map[string]int{"ready": 2})

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("unexpected error field: %v", body)
	}
	data, _ := body["data"].(map[string]any)
	if data["ready"] != float64(2) {
		t.Fatalf("unexpected data: %v", body["data"])
	}
}
