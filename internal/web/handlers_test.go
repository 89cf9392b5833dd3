package web

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/memnotes/internal/config"
	"github.com/hpungsan/memnotes/internal/db"
	"github.com/hpungsan/memnotes/internal/ops"
)

func setupTest(t *testing.T) (*Handlers, string) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	outbox := filepath.Join(tmpDir, "outbox")
	cfg := config.DefaultConfig()
	cfg.ShareDir = outbox
	cfg.TimeZone = "UTC"

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ex, err := ops.NewExporters(cfg, tmpDir, logger)
	if err != nil {
		t.Fatalf("NewExporters: %v", err)
	}

	return &Handlers{
		db:      database,
		ex:      ex,
		logger:  logger,
		version: "test",
	}, outbox
}

// seedNote stores a note and returns its ID.
func seedNote(t *testing.T, h *Handlers, input ops.AddNoteInput) string {
	t.Helper()
	out, err := ops.AddNote(context.Background(), h.db, input)
	if err != nil {
		t.Fatalf("seed note %q: %v", input.Title, err)
	}
	return out.ID
}

func seedCategory(t *testing.T, h *Handlers, name string) {
	t.Helper()
	if _, err := ops.AddCategory(context.Background(), h.db, ops.AddCategoryInput{Name: name}); err != nil {
		t.Fatalf("seed category %q: %v", name, err)
	}
}

// --- HandleList ---

func TestHandleList_Default(t *testing.T) {
	h, _ := setupTest(t)
	seedNote(t, h, ops.AddNoteInput{Title: "alpha", Content: "first"})
	seedNote(t, h, ops.AddNoteInput{Title: "beta", Content: "second"})

	req := httptest.NewRequest("GET", "/notes", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"My Notes", "2 notes", "alpha", "beta"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in response", want)
		}
	}
}

func TestHandleList_WithFilters(t *testing.T) {
	h, _ := setupTest(t)
	seedCategory(t, h, "Work")
	seedNote(t, h, ops.AddNoteInput{Title: "in-work", Content: "x", Category: "work", Tags: []string{"q3"}})
	seedNote(t, h, ops.AddNoteInput{Title: "other", Content: "y"})

	req := httptest.NewRequest("GET", "/notes?category=Work&title=Work+notes", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "in-work") || !strings.Contains(body, "Work notes") {
		t.Error("expected filtered note and custom title")
	}
	if strings.Contains(body, ">other<") {
		t.Error("did not expect note 'other' in filtered results")
	}

	req = httptest.NewRequest("GET", "/notes?tag=q3&uncategorized=true", nil)
	rec = httptest.NewRecorder()
	h.HandleList(rec, req)
	if !strings.Contains(rec.Body.String(), "0 note") {
		t.Error("uncategorized and tag filters should leave no notes")
	}
}

func TestHandleList_IDsKeepOrder(t *testing.T) {
	h, _ := setupTest(t)
	a := seedNote(t, h, ops.AddNoteInput{Title: "first-made", Content: "a"})
	b := seedNote(t, h, ops.AddNoteInput{Title: "second-made", Content: "b"})

	req := httptest.NewRequest("GET", "/notes?ids="+a+","+b, nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	body := rec.Body.String()
	if strings.Index(body, "first-made") > strings.Index(body, "second-made") {
		t.Error("ids order not kept")
	}
}

func TestHandleList_UnknownCategory(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("GET", "/notes?category=ghost", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "NOT_FOUND") {
		t.Error("expected error page with code")
	}
}

// --- HandleDetail ---

func TestHandleDetail(t *testing.T) {
	h, _ := setupTest(t)
	id := seedNote(t, h, ops.AddNoteInput{Title: "<b>Trip</b>", Content: "pack\nbags", Type: "checklist"})

	req := httptest.NewRequest("GET", "/notes/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<b>Trip</b>") {
		t.Error("title was not escaped")
	}
	if !strings.Contains(body, "&lt;b&gt;Trip&lt;/b&gt;") {
		t.Error("expected escaped title")
	}
	if !strings.Contains(body, "Checklist") {
		t.Error("expected type label")
	}
}

func TestHandleDetail_NotFound_JSON(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("GET", "/notes/missing", nil)
	req.SetPathValue("id", "missing")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	code := decodeErrorCode(t, rec)
	if code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", code)
	}
}

// --- HandleExport ---

func TestHandleExport(t *testing.T) {
	h, outbox := setupTest(t)
	id := seedNote(t, h, ops.AddNoteInput{Title: "Shopping", Content: "milk"})

	req := httptest.NewRequest("POST", "/notes/"+id+"/export", nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var out ops.ExportOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Shared || out.MimeType != "text/html" || out.Bytes == 0 {
		t.Errorf("unexpected output: %+v", out)
	}
	if _, err := os.Stat(out.Path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outbox, "note.html")); err != nil {
		t.Errorf("shared copy missing: %v", err)
	}
}

func TestHandleExport_NotFound(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("POST", "/notes/nope/export", nil)
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.HandleExport(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", code)
	}
}

func TestHandleExportList_Form(t *testing.T) {
	h, outbox := setupTest(t)
	seedNote(t, h, ops.AddNoteInput{Title: "one", Content: "1"})
	seedNote(t, h, ops.AddNoteInput{Title: "two", Content: "2"})

	form := url.Values{"title": {"Weekly"}}
	req := httptest.NewRequest("POST", "/notes/export", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleExportList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	data, err := os.ReadFile(filepath.Join(outbox, "notes.html"))
	if err != nil {
		t.Fatalf("shared copy missing: %v", err)
	}
	if !strings.Contains(string(data), "Weekly") || !strings.Contains(string(data), "2 notes") {
		t.Error("list document missing title or count")
	}
}

func TestHandleExportList_TooManyIDs(t *testing.T) {
	h, _ := setupTest(t)

	ids := make([]string, ops.MaxExportNotes+1)
	for i := range ids {
		ids[i] = "x"
	}
	req := httptest.NewRequest("POST", "/notes/export?ids="+strings.Join(ids, ","), nil)
	rec := httptest.NewRecorder()
	h.HandleExportList(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleList_Query(t *testing.T) {
	h, _ := setupTest(t)
	seedNote(t, h, ops.AddNoteInput{Title: "Bike repair", Content: "chain", Tags: []string{"diy"}})
	seedNote(t, h, ops.AddNoteInput{Title: "Bike route", Content: "river", Tags: []string{"fun"}})
	seedNote(t, h, ops.AddNoteInput{Title: "Books", Content: "novels"})

	req := httptest.NewRequest("GET", "/notes?q=bike&tags=diy,work", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Bike repair") || strings.Contains(body, "Bike route") || strings.Contains(body, "Books") {
		t.Error("document should hold only the matching tagged note")
	}
}

// --- HandleSearch ---

func TestHandleSearch(t *testing.T) {
	h, _ := setupTest(t)
	seedNote(t, h, ops.AddNoteInput{Title: "Invoice", Content: "due friday"})
	seedNote(t, h, ops.AddNoteInput{Title: "Call", Content: "ask about invoice"})

	req := httptest.NewRequest("GET", "/notes/search?q=invoice&limit=1", nil)
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var out ops.SearchOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Title != "Invoice" || !out.Pagination.HasMore {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestHandleSearch_MissingQuery(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("GET", "/notes/search", nil)
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "INVALID_REQUEST" {
		t.Errorf("code = %q, want INVALID_REQUEST", code)
	}
}

// --- Deletes and categories ---

func TestHandleDelete(t *testing.T) {
	h, _ := setupTest(t)
	id := seedNote(t, h, ops.AddNoteInput{Title: "temp", Content: "x"})

	req := httptest.NewRequest("DELETE", "/notes/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var out ops.DeleteOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Deleted || out.ID != id {
		t.Errorf("unexpected output: %+v", out)
	}

	rec = httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHandleCategoriesAndDelete(t *testing.T) {
	h, _ := setupTest(t)
	seedCategory(t, h, "Errands")
	id := seedNote(t, h, ops.AddNoteInput{Title: "post office", Category: "errands"})

	req := httptest.NewRequest("GET", "/categories", nil)
	rec := httptest.NewRecorder()
	h.HandleCategories(rec, req)
	var list ops.ListCategoriesOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].NoteCount != 1 {
		t.Fatalf("unexpected categories: %+v", list.Items)
	}

	del := httptest.NewRequest("DELETE", "/categories/Errands", nil)
	del.SetPathValue("ref", "Errands")
	rec = httptest.NewRecorder()
	h.HandleDeleteCategory(rec, del)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "CATEGORY_NOT_EMPTY" {
		t.Errorf("code = %q, want CATEGORY_NOT_EMPTY", code)
	}

	if _, err := ops.DeleteNote(context.Background(), h.db, ops.DeleteNoteInput{ID: id}); err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	h.HandleDeleteCategory(rec, del)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleExportStatus(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("GET", "/export/status?mode=single", nil)
	rec := httptest.NewRecorder()
	h.HandleExportStatus(rec, req)
	var out ops.ExportStatusOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Mode != "single" || out.State != "idle" || out.Busy {
		t.Errorf("unexpected status: %+v", out)
	}

	req = httptest.NewRequest("GET", "/export/status?mode=bulk", nil)
	rec = httptest.NewRecorder()
	h.HandleExportStatus(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// --- Server ---

func TestNewServer_RoutesAndHeaders(t *testing.T) {
	h, _ := setupTest(t)
	id := seedNote(t, h, ops.AddNoteInput{Title: "routed", Content: "ok"})

	srv := NewServer(h.db, h.ex, h.logger, "test", "127.0.0.1", 0)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	client := ts.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/notes" {
		t.Errorf("root: status = %d, location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, err = client.Get(ts.URL + "/notes/" + id)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("detail status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options")
	}
	if !strings.Contains(resp.Header.Get("Content-Security-Policy"), "default-src 'none'") {
		t.Error("missing Content-Security-Policy")
	}

	resp, err = client.Get(ts.URL + "/notes/" + id + "/export")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET export status = %d, want 405", resp.StatusCode)
	}

	resp, err = client.Get(ts.URL + "/notes/search?q=routed")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		t.Errorf("search status = %d, type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/notes/"+id, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d, want 200", resp.StatusCode)
	}
}

func TestRenderError_HidesInternal(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("GET", "/notes", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.renderError(rec, req, os.ErrPermission)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "permission") {
		t.Error("internal error cause leaked")
	}
}

func TestParseIDs(t *testing.T) {
	v := url.Values{"ids": {"a, b", "c", ","}}
	got := parseIDs(v)
	want := []string{"a", "b", "c"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("parseIDs = %v, want %v", got, want)
	}
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	return payload.Error.Code
}
