package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/1").
		Data(map[string]int{"id": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Location"); got != "/api/expenses/1" {
		t.Errorf("Location = %q, want %q", got, "/api/expenses/1")
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["id"] != 1 {
		t.Errorf("body id = %d, want 1", body["id"])
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "" {
		t.Errorf("Content-Type = %q, want unset", got)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		builder  *JSONResponseBuilder
		wantCode int
		wantType string
	}{
		{"BadRequest", BadRequestError("bad"), http.StatusBadRequest, "bad_request"},
		{"UnprocessableEntity", UnprocessableEntityError("invalid amount"), http.StatusUnprocessableEntity, "validation_error"},
		{"NotFound", NotFoundError("expense not found"), http.StatusNotFound, "not_found_error"},
		{"InternalServerError", InternalServerError("internal error"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.WithRequestID("req-1").Write(w)

			if w.Code != tt.wantCode {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantCode)
			}
			var env errorEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if env.Error.Type != tt.wantType {
				t.Errorf("error type = %q, want %q", env.Error.Type, tt.wantType)
			}
			if env.Error.RequestID != "req-1" {
				t.Errorf("request id = %q, want req-1", env.Error.RequestID)
			}
		})
	}
}

func TestWithRequestID_IgnoresNonErrorPayload(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Data(map[string]string{"status": "ok"}).WithRequestID("req-1").Write(w)

	if got := w.Body.String(); got != "{\"status\":\"ok\"}\n" {
		t.Errorf("Body = %q", got)
	}
}
