package itemgate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultAPIBase {
		t.Fatalf("base = %q, want %q", u.String(), defaultAPIBase)
	}

	u, err = parseBaseURL("example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_ListsAndAttachesHeaders(t *testing.T) {
	t.Parallel()

	var gotAuth, gotAgent, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/sima-land/get_items":
			_, _ = w.Write([]byte(`[{"id": 42, "id_item": "A-42", "name": "Phone", "price": 99.5}]`))
		case "/sima-land/get_items_sellers":
			_, _ = w.Write([]byte(`[{"id": 7, "catalog_item_id": 42, "ai_description": "desc", "ai_keywords": null,
				"catalog_item": {"id": 42, "id_item": "A-42", "name": "Phone", "price": 99.5}}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, staticToken("tok"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	catalog, err := c.ListCatalog(ctx)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if len(catalog) != 1 || catalog[0].ID != "42" || catalog[0].ExternalID != "A-42" {
		t.Fatalf("ListCatalog = %#v, want id 42 / A-42", catalog)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q, want Bearer tok", gotAuth)
	}
	if !strings.HasPrefix(gotAgent, "seomate/") {
		t.Fatalf("User-Agent = %q, want seomate/*", gotAgent)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-ID header missing")
	}

	generated, err := c.ListGenerated(ctx)
	if err != nil {
		t.Fatalf("ListGenerated returned error: %v", err)
	}
	if len(generated) != 1 {
		t.Fatalf("ListGenerated len = %d, want 1", len(generated))
	}
	g := generated[0]
	if g.ID != "7" || g.SourceKey() != "42" || g.DescriptionText() != "desc" || g.Keywords != nil {
		t.Fatalf("ListGenerated item = %#v", g)
	}
	if g.Status() != StatusReady {
		t.Fatalf("Status = %q, want ready", g.Status())
	}
}

func TestClient_GenerateErrorPayloadIsApplicationFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sima-land/ai_generate_desc_seller/42" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"error": "quota exceeded"}`))
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL, nil)
	resp, err := c.Generate(context.Background(), "42")
	if err == nil {
		t.Fatalf("Generate returned nil error, want application failure")
	}
	if KindOf(err) != KindApplication {
		t.Fatalf("KindOf = %v, want application", KindOf(err))
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("error = %q, want quota exceeded", err)
	}
	if resp == nil || resp.Error != "quota exceeded" {
		t.Fatalf("payload = %#v, want error field preserved", resp)
	}
}

func TestClient_UnauthorizedIsAuthFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL, staticToken("stale"))
	_, err := c.ListCatalog(context.Background())
	if !IsAuth(err) {
		t.Fatalf("ListCatalog error = %v, want auth failure", err)
	}
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("error should wrap ErrNotAuthenticated: %v", err)
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sima-land/get_items":
			_, _ = w.Write([]byte("{not-json"))
		case "/sima-land/get_items_sellers":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "nothing here"}`))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL, nil)

	_, err := c.ListCatalog(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") || KindOf(err) != KindTransport {
		t.Fatalf("ListCatalog error = %v, want transport decode error", err)
	}

	_, err = c.ListGenerated(context.Background())
	if err == nil || !strings.Contains(err.Error(), "nothing here") {
		t.Fatalf("ListGenerated error = %v, want server detail", err)
	}

	_, err = c.FetchLogs(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("FetchLogs error = %v, want status 500 error", err)
	}
}

func TestClient_SearchEscapesQueryAndRejectsBlank(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL, nil)
	if _, err := c.SearchCatalog(context.Background(), "red phone"); err != nil {
		t.Fatalf("SearchCatalog returned error: %v", err)
	}
	if gotPath != "/sima-land/search_item_to_word/red%20phone" {
		t.Fatalf("path = %q", gotPath)
	}
	if _, err := c.SearchGenerated(context.Background(), "case"); err != nil {
		t.Fatalf("SearchGenerated returned error: %v", err)
	}
	if gotPath != "/sima-land/search_generated_items/case" {
		t.Fatalf("path = %q", gotPath)
	}

	_, err := c.SearchCatalog(context.Background(), "   ")
	if KindOf(err) != KindValidation {
		t.Fatalf("blank search error = %v, want validation", err)
	}
}

func TestClient_SaveGenerationSendsBody(t *testing.T) {
	t.Parallel()

	var got map[string]string
	var method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"id": 7}`))
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL, nil)
	err := c.SaveGeneration(context.Background(), "7", GenerationUpdate{Description: "d", Keywords: "k1, k2"})
	if err != nil {
		t.Fatalf("SaveGeneration returned error: %v", err)
	}
	if method != http.MethodPut || got["ai_description"] != "d" || got["ai_keywords"] != "k1, k2" {
		t.Fatalf("request = %s %#v", method, got)
	}
}

func TestClient_OpenIngestStreamsBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sima-land/loading_words_db/25" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: loaded 10\n\n")
		w.(http.Flusher).Flush()
		_, _ = io.WriteString(w, "data: loaded 20\n\n")
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL, staticToken("tok"))
	body, err := c.OpenIngest(context.Background(), 25)
	if err != nil {
		t.Fatalf("OpenIngest returned error: %v", err)
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(raw) != "data: loaded 10\n\ndata: loaded 20\n\n" {
		t.Fatalf("body = %q", raw)
	}

	if _, err := c.OpenIngest(context.Background(), 0); KindOf(err) != KindValidation {
		t.Fatalf("OpenIngest(0) error = %v, want validation", err)
	}
	if _, err := c.OpenIngest(context.Background(), maxIngestCount+1); KindOf(err) != KindValidation {
		t.Fatalf("OpenIngest(max+1) error = %v, want validation", err)
	}
}

func TestClient_ImportUploadsMultipart(t *testing.T) {
	t.Parallel()

	var gotName, gotContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reader := multipart.NewReader(r.Body, params["boundary"])
		part, err := reader.NextPart()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotName = part.FileName()
		raw, _ := io.ReadAll(part)
		gotContent = string(raw)
		_, _ = w.Write([]byte(`{"success": true, "added": 3, "skipped": 1, "errors": ["row 5: missing name"]}`))
	}))
	t.Cleanup(server.Close)

	path := filepath.Join(t.TempDir(), "items.xlsx")
	if err := os.WriteFile(path, []byte("sheet-bytes"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	c, _ := NewClient(server.URL, staticToken("tok"))
	result, err := c.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if gotName != "items.xlsx" || gotContent != "sheet-bytes" {
		t.Fatalf("upload = %q %q", gotName, gotContent)
	}
	if result.Added != 3 || result.Skipped != 1 || len(result.Errors) != 1 {
		t.Fatalf("result = %#v", result)
	}

	if _, err := c.Import(context.Background(), ""); KindOf(err) != KindValidation {
		t.Fatalf("Import(\"\") error = %v, want validation", err)
	}
	if _, err := c.Import(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx")); KindOf(err) != KindValidation {
		t.Fatalf("Import(missing) error = %v, want validation", err)
	}
}

func TestClient_DownloadWritesDatedFile(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/excel/backup-database" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("xlsx"))
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	c, _ := NewClient(server.URL, nil)
	now := time.Date(2024, 5, 24, 10, 0, 0, 0, time.UTC)
	path, err := c.Download(context.Background(), ExportBackup, dir, now)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if filepath.Base(path) != "itemgate_backup_2024-05-24.xlsx" {
		t.Fatalf("path = %q", path)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "xlsx" {
		t.Fatalf("content = %q", raw)
	}
}

func TestClient_LoginAndMe(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login-json":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"access_token": "abc", "token_type": "bearer"}`))
		case "/auth/me":
			_, _ = w.Write([]byte(`{"id": 1, "email": "a@b.c", "role": "admin", "is_active": true}`))
		}
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL, nil)
	token, err := c.Login(context.Background(), "a@b.c", "secret")
	if err != nil || token != "abc" {
		t.Fatalf("Login = %q, %v", token, err)
	}
	if _, err := c.Login(context.Background(), "a@b.c", "wrong"); !IsAuth(err) {
		t.Fatalf("Login wrong password error = %v, want auth", err)
	}
	if _, err := c.Login(context.Background(), "", ""); KindOf(err) != KindValidation {
		t.Fatalf("Login blank error = %v, want validation", err)
	}
	user, err := c.Me(context.Background())
	if err != nil || !user.IsAdmin() || user.ID != "1" {
		t.Fatalf("Me = %#v, %v", user, err)
	}
}

func TestClient_Register(t *testing.T) {
	t.Parallel()

	var bodies []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/register" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		if body["email"] == "taken@b.c" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail": "Email already registered"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 5, "email": "a@b.c", "full_name": "Ann", "role": "user", "is_active": true}`))
	}))
	t.Cleanup(server.Close)

	c, _ := NewClient(server.URL, nil)
	user, err := c.Register(context.Background(), " a@b.c ", "secret", " Ann ")
	if err != nil || user.ID != "5" || user.FullName != "Ann" {
		t.Fatalf("Register = %#v, %v", user, err)
	}
	if bodies[0]["email"] != "a@b.c" || bodies[0]["password"] != "secret" || bodies[0]["full_name"] != "Ann" {
		t.Fatalf("body = %v", bodies[0])
	}

	if _, err := c.Register(context.Background(), "b@b.c", "secret", ""); err != nil {
		t.Fatalf("Register without name: %v", err)
	}
	if _, ok := bodies[1]["full_name"]; ok {
		t.Fatalf("empty full_name should be omitted, body = %v", bodies[1])
	}

	_, err = c.Register(context.Background(), "taken@b.c", "secret", "")
	if err == nil || !strings.Contains(err.Error(), "Email already registered") {
		t.Fatalf("duplicate err = %v", err)
	}

	cases := []struct{ email, password string }{{"", "secret"}, {"a@b.c", ""}, {"a@b.c", "12345"}}
	for _, tc := range cases {
		if _, err := c.Register(context.Background(), tc.email, tc.password, ""); KindOf(err) != KindValidation {
			t.Fatalf("Register(%q, %q) err = %v, want validation", tc.email, tc.password, err)
		}
	}
	if len(bodies) != 3 {
		t.Fatalf("validation failures reached the server: %d requests", len(bodies))
	}
}
