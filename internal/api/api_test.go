package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/postmigrate/internal/migrator"
	"github.com/starford/postmigrate/internal/models"
	"github.com/starford/postmigrate/internal/testutil"
	"github.com/starford/postmigrate/internal/verify"
)

const legacyPost = "---\nlayout: post\ntitle: Hello\ntags: [go]\n---\nBody\n"

type env struct {
	svc     *migrator.Service
	router  http.Handler
	inDir   string
	batches int
}

// testEnv sets up temp input/output dirs, a journal, the migrator and router.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) *env {
	t.Helper()
	return testEnvFull(t, authToken, true, nil)
}

func testEnvFull(t *testing.T, authToken string, withJournal bool, sseHandler http.Handler) *env {
	t.Helper()
	in, out := testutil.TestDirs(t)

	var svc *migrator.Service
	if withJournal {
		svc = migrator.New(in, out, testutil.TestJournal(t), verify.New(nil), migrator.Options{}, nil)
	} else {
		svc = migrator.New(in, out, nil, nil, migrator.Options{}, nil)
	}
	e := &env{svc: svc, inDir: in.Root()}
	e.router = NewRouter(svc, authToken != "", authToken, sseHandler, func(*migrator.Batch) { e.batches++ })
	return e
}

func (e *env) do(t *testing.T, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func writeInput(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestConvert(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodPost, "/convert", ConvertRequest{Filename: "2020-01-15-hello.md", Content: legacyPost})
	if w.Code != http.StatusOK {
		t.Fatalf("convert status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ConvertResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Outcome.Status != models.StatusMigrated {
		t.Errorf("status = %q", resp.Outcome.Status)
	}
	want := "---\ntitle: Hello\ndescription: \npubDate: 2020-01-15\ntags: [go]\n---\nBody\n"
	if resp.Text != want {
		t.Errorf("text = %q, want %q", resp.Text, want)
	}
}

func TestConvert_Skipped(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodPost, "/convert", ConvertRequest{Filename: "notes.md", Content: legacyPost})
	if w.Code != http.StatusOK {
		t.Fatalf("convert status = %d", w.Code)
	}
	var resp ConvertResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Outcome.Status != models.StatusSkipped || resp.Outcome.Reason != "invalid filename format" {
		t.Errorf("outcome = %+v", resp.Outcome)
	}
}

func TestConvert_BadRequest(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodPost, "/convert", ConvertRequest{Content: legacyPost})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing filename = %d, want 400", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/convert", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", rec.Code)
	}
}

func TestMigrateAndJournal(t *testing.T) {
	e := testEnv(t, "")
	writeInput(t, e.inDir, "2020-01-15-hello.md", legacyPost)
	writeInput(t, e.inDir, "about.md", legacyPost)

	w := e.do(t, http.MethodPost, "/migrate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("migrate status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp MigrateResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Migrated != 1 || resp.Skipped != 1 {
		t.Errorf("counts = %d/%d", resp.Migrated, resp.Skipped)
	}
	if e.batches != 1 {
		t.Errorf("batch hook calls = %d", e.batches)
	}

	w = e.do(t, http.MethodGet, "/migrations?status=skipped", nil)
	var list MigrationListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Migrations[0].Filename != "about.md" {
		t.Errorf("skipped list = %+v", list)
	}

	w = e.do(t, http.MethodGet, "/migrations?q=Hello", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 {
		t.Errorf("search total = %d", list.Total)
	}

	w = e.do(t, http.MethodGet, "/migrations/2020-01-15-hello.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get migration = %d", w.Code)
	}
	var row models.Outcome
	_ = json.Unmarshal(w.Body.Bytes(), &row)
	if row.Title != "Hello" || row.PubDate != "2020-01-15" {
		t.Errorf("row = %+v", row)
	}
}

func TestMigrations_InvalidStatus(t *testing.T) {
	e := testEnv(t, "")
	if w := e.do(t, http.MethodGet, "/migrations?status=bogus", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d, want 400", w.Code)
	}
}

func TestGetMigration_NotFound(t *testing.T) {
	e := testEnv(t, "")
	if w := e.do(t, http.MethodGet, "/migrations/nope.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing row = %d, want 404", w.Code)
	}
}

func TestMigrations_JournalDisabled(t *testing.T) {
	e := testEnvFull(t, "", false, nil)
	if w := e.do(t, http.MethodGet, "/migrations", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("no journal = %d, want 503", w.Code)
	}
}

func TestPosts(t *testing.T) {
	e := testEnv(t, "")
	writeInput(t, e.inDir, "2020-01-15-hello.md", legacyPost)
	e.do(t, http.MethodPost, "/migrate", nil)

	w := e.do(t, http.MethodGet, "/posts", nil)
	var list PostListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Posts) != 1 || list.Posts[0].Path != "2020-01-15-hello.md" {
		t.Fatalf("posts = %+v", list)
	}

	w = e.do(t, http.MethodGet, "/posts/2020-01-15-hello.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get post = %d", w.Code)
	}
	var post PostResponse
	_ = json.Unmarshal(w.Body.Bytes(), &post)
	if post.Checksum == "" || post.Content == "" {
		t.Errorf("post = %+v", post)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	e := testEnv(t, "")
	if w := e.do(t, http.MethodGet, "/posts/ghost.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing post = %d, want 404", w.Code)
	}
}

func TestVerifyEndpoint(t *testing.T) {
	e := testEnv(t, "")
	writeInput(t, e.inDir, "2020-01-15-hello.md", legacyPost)
	e.do(t, http.MethodPost, "/migrate", nil)

	w := e.do(t, http.MethodGet, "/verify", nil)
	var resp VerifyResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || len(resp.Files) != 0 {
		t.Errorf("verify = %d %+v", w.Code, resp)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := testEnv(t, "secret123")
	w := e.do(t, http.MethodGet, "/posts", nil, "Authorization", "Bearer secret123")
	if w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	e := testEnv(t, "secret123")
	if w := e.do(t, http.MethodGet, "/posts", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	e := testEnv(t, "secret123")
	if w := e.do(t, http.MethodGet, "/posts", nil, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	e := testEnv(t, "")
	if w := e.do(t, http.MethodGet, "/posts", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// sseStub writes headers and blocks until the request context is done.
var sseStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	e := testEnvFull(t, "secret", true, sseStub)
	if w := e.do(t, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	e := testEnvFull(t, "tok", true, sseStub)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

func TestGetPost_TraversalRejected(t *testing.T) {
	e := testEnv(t, "")
	if w := e.do(t, http.MethodGet, "/posts/..%2F..%2Fsecret.md", nil); w.Code != http.StatusBadRequest {
		t.Errorf("traversal = %d, want 400", w.Code)
	}
}
