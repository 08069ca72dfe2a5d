package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BerylCAtieno/processos-api/internal/utils"
)

func TestDocumentID(t *testing.T) {
	cases := map[string]bool{"1": true, "42": true, "0": false, "-1": false, "abc": false, "": false, "1.5": false}
	for raw, want := range cases {
		if _, ok := documentID(raw); ok != want {
			t.Errorf("documentID(%q) ok = %v, want %v", raw, ok, want)
		}
	}
}

func TestContentTypeOf(t *testing.T) {
	if got := contentTypeOf("peticao.PDF", "", nil); got != "application/pdf" {
		t.Errorf("by extension = %q", got)
	}
	if got := contentTypeOf("semext", "application/pdf", nil); got != "application/pdf" {
		t.Errorf("by header = %q", got)
	}
	if got := contentTypeOf("semext", "application/octet-stream", []byte("%PDF-1.4\n")); got != "application/pdf" {
		t.Errorf("by sniffing = %q", got)
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(rec, req, utils.NopLogger(), utils.WrapInternalError("falha ao salvar registro", errors.New("disk I/O error")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, "disk") || !strings.Contains(body, "falha ao salvar registro") {
		t.Fatalf("body = %s", body)
	}

	rec = httptest.NewRecorder()
	respondError(rec, req, utils.NopLogger(), errors.New("boom"))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "erro interno do servidor") {
		t.Fatalf("plain error: %d %s", rec.Code, rec.Body.String())
	}
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealthUnhealthy(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(pinger{err: errors.New("down")}, utils.NopLogger())(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
