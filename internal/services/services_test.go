package services

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/BerylCAtieno/processos-api/internal/db"
	"github.com/BerylCAtieno/processos-api/internal/models"
	"github.com/BerylCAtieno/processos-api/internal/queue"
	"github.com/BerylCAtieno/processos-api/internal/repository"
	"github.com/BerylCAtieno/processos-api/internal/storage"
	"github.com/BerylCAtieno/processos-api/internal/utils"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, queue.Message) error {
	return errors.New("broker unavailable")
}

func (failingPublisher) Close() error { return nil }

type env struct {
	cases CaseService
	docs  DocumentService
	repo  repository.DocumentRepository
	store storage.Storage
	queue *queue.MemoryQueue
}

func newEnv(t *testing.T, publisher queue.Publisher) *env {
	t.Helper()

	dir := t.TempDir()
	database, err := db.Open(filepath.Join(dir, "processos.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.RunMigrations(database); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	store, err := storage.NewLocalStorage(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	mq := queue.NewMemoryQueue(8, utils.NopLogger())
	if publisher == nil {
		publisher = mq
	}

	caseRepo := repository.NewCaseRepository(database)
	docRepo := repository.NewDocumentRepository(database)

	return &env{
		cases: NewCaseService(caseRepo, docRepo, utils.NopLogger()),
		docs:  NewDocumentService(caseRepo, docRepo, store, publisher, utils.NopLogger()),
		repo:  docRepo,
		store: store,
		queue: mq,
	}
}

func number(n int64) *int64 { return &n }

func wantStatus(t *testing.T, err error, status int, message string) {
	t.Helper()
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an AppError", err)
	}
	if appErr.StatusCode != status || (message != "" && appErr.Message != message) {
		t.Fatalf("got %d %q, want %d %q", appErr.StatusCode, appErr.Message, status, message)
	}
}

func TestCreateAndGetCase(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	resp, err := e.cases.CreateCase(ctx, &models.CreateCaseRequest{Class: "ARE", Number: number(123456), Origin: "STF"})
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	if resp.Code != "ARE123456" || resp.Status != "processo cadastrado" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	detail, err := e.cases.GetCase(ctx, "ARE123456")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if detail.Case.Origin != "STF" || detail.Case.Documents == nil || len(detail.Case.Documents) != 0 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
}

func TestCreateCaseDuplicate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	req := &models.CreateCaseRequest{Class: "RE", Number: number(1), Origin: "TJSP"}
	if _, err := e.cases.CreateCase(ctx, req); err != nil {
		t.Fatalf("first CreateCase: %v", err)
	}
	_, err := e.cases.CreateCase(ctx, req)
	wantStatus(t, err, http.StatusBadRequest, msgCaseExists)
}

func TestCreateCaseInvalidPayload(t *testing.T) {
	e := newEnv(t, nil)

	for _, req := range []*models.CreateCaseRequest{
		{Number: number(1), Origin: "STF"},
		{Class: "RE", Origin: "STF"},
		{Class: "RE", Number: number(1)},
		{Class: "  ", Number: number(1), Origin: "STF"},
		{Class: "RE", Number: number(-3), Origin: "STF"},
	} {
		_, err := e.cases.CreateCase(context.Background(), req)
		wantStatus(t, err, http.StatusBadRequest, msgInvalidPayload)
	}
}

func TestGetCaseNotFound(t *testing.T) {
	_, err := newEnv(t, nil).cases.GetCase(context.Background(), "XYZ1")
	wantStatus(t, err, http.StatusNotFound, msgCaseNotFound)
}

func TestUploadDocument(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	if _, err := e.cases.CreateCase(ctx, &models.CreateCaseRequest{Class: "ARE", Number: number(7), Origin: "STF"}); err != nil {
		t.Fatalf("CreateCase: %v", err)
	}

	data := []byte("%PDF-1.4 conteúdo")
	resp, err := e.docs.UploadDocument(ctx, &models.UploadRequest{
		CaseCode:    "ARE7",
		File:        data,
		Filename:    `C:\Users\fulano\peticao.pdf`,
		ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if resp.Checksum != utils.Checksum(data) || resp.DocumentID == 0 || resp.Status != "documento cadastrado" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if e.queue.Published() != 1 {
		t.Fatalf("published %d messages, want 1", e.queue.Published())
	}

	doc, err := e.docs.GetDocument(ctx, "ARE7", resp.DocumentID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Status != models.StatusNotStarted || doc.Text != nil || doc.Filename != "peticao.pdf" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if filepath.Base(filepath.Dir(doc.Path)) != "ARE7" {
		t.Errorf("stored path %q not under the case code", doc.Path)
	}

	stored, err := e.store.Download(ctx, doc.Path)
	if err != nil || string(stored) != string(data) {
		t.Fatalf("stored bytes differ: %v", err)
	}

	status, err := e.docs.GetStatus(ctx, "ARE7", resp.DocumentID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Status != models.StatusNotStarted || status.CreatedAt.IsZero() {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestUploadDocumentUnknownCase(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.docs.UploadDocument(context.Background(), &models.UploadRequest{CaseCode: "NADA1", File: []byte("x"), Filename: "a.pdf"})
	wantStatus(t, err, http.StatusNotFound, msgCaseNotFound)
	if e.queue.Published() != 0 {
		t.Fatal("message published for an unknown case")
	}
}

func TestUploadEmptyFileChecksCaseFirst(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	_, err := e.docs.UploadDocument(ctx, &models.UploadRequest{CaseCode: "NADA1", Filename: "vazio.pdf"})
	wantStatus(t, err, http.StatusNotFound, msgCaseNotFound)

	if _, err := e.cases.CreateCase(ctx, &models.CreateCaseRequest{Class: "RE", Number: number(5), Origin: "STF"}); err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	_, err = e.docs.UploadDocument(ctx, &models.UploadRequest{CaseCode: "RE5", Filename: "vazio.pdf"})
	wantStatus(t, err, http.StatusBadRequest, msgEmptyFile)

	if e.queue.Published() != 0 {
		t.Fatal("message published for an empty upload")
	}
}

func TestUploadDocumentPublishFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, failingPublisher{})
	if _, err := e.cases.CreateCase(ctx, &models.CreateCaseRequest{Class: "RE", Number: number(9), Origin: "STJ"}); err != nil {
		t.Fatalf("CreateCase: %v", err)
	}

	_, err := e.docs.UploadDocument(ctx, &models.UploadRequest{CaseCode: "RE9", File: []byte("x"), Filename: "a.pdf"})
	wantStatus(t, err, http.StatusInternalServerError, msgQueueFailed)

	detail, err := e.cases.GetCase(ctx, "RE9")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if len(detail.Case.Documents) != 1 || detail.Case.Documents[0].Status != models.StatusNotStarted {
		t.Fatalf("expected the committed row to stay NOT_STARTED: %+v", detail.Case.Documents)
	}
}

func TestGetDocumentScopedToCase(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	for _, n := range []int64{1, 2} {
		if _, err := e.cases.CreateCase(ctx, &models.CreateCaseRequest{Class: "RE", Number: number(n), Origin: "STF"}); err != nil {
			t.Fatalf("CreateCase: %v", err)
		}
	}

	resp, err := e.docs.UploadDocument(ctx, &models.UploadRequest{CaseCode: "RE1", File: []byte("x"), Filename: "a.pdf"})
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}

	_, err = e.docs.GetDocument(ctx, "RE2", resp.DocumentID)
	wantStatus(t, err, http.StatusNotFound, msgDocumentNotFound)

	_, err = e.docs.GetStatus(ctx, "RE1", resp.DocumentID+100)
	wantStatus(t, err, http.StatusNotFound, msgDocumentNotFound)

	_, err = e.docs.GetStatus(ctx, "RE3", resp.DocumentID)
	wantStatus(t, err, http.StatusNotFound, msgCaseNotFound)
}

func TestCleanFilename(t *testing.T) {
	cases := map[string]string{
		"peticao.pdf":         "peticao.pdf",
		"../../etc/passwd":    "passwd",
		`C:\docs\inicial.pdf`: "inicial.pdf",
		"":                    "documento",
		"/":                   "documento",
		"  espaços.pdf ":      "espaços.pdf",
	}
	for in, want := range cases {
		if got := cleanFilename(in); got != want {
			t.Errorf("cleanFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
