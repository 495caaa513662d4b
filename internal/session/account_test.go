package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/seomate/seomate/internal/auth"
	"github.com/seomate/seomate/internal/itemgate"
	"github.com/seomate/seomate/internal/state"
)

func TestLogin_StoresTokenLoadsUserAndRefreshes(t *testing.T) {
	fb := &fakeBackend{token: "fresh", user: itemgate.User{Email: "a@b.c", Role: "admin"}, catalog: catalog("1")}
	creds := auth.NewCredentials("")
	s, err := New(Options{Backend: fb, Accounts: fb, Files: fb, Credentials: creds})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if creds.Token() != "fresh" || !s.Authenticated() {
		t.Fatalf("token = %q", creds.Token())
	}
	if user, ok := s.User(); !ok || user.Email != "a@b.c" || !s.IsAdmin() {
		t.Fatalf("user = %+v ok=%v", user, ok)
	}
	if len(s.Snapshot().Catalog) != 1 {
		t.Fatalf("login should refresh collections")
	}
}

func TestLogin_FailureKeepsLoggedOut(t *testing.T) {
	fb := &fakeBackend{token: "fresh"}
	s, _ := New(Options{Backend: fb, Accounts: fb})
	if err := s.Login(context.Background(), "a@b.c", "wrong"); err == nil {
		t.Fatalf("Login should fail")
	}
	if s.Authenticated() {
		t.Fatalf("failed login stored a token")
	}
	if !strings.Contains(s.Notice(), "bad credentials") {
		t.Fatalf("notice = %q", s.Notice())
	}
}

func TestRegister_ThenLogsIn(t *testing.T) {
	fb := &fakeBackend{token: "fresh", user: itemgate.User{Email: "new@b.c"}, catalog: catalog("1")}
	creds := auth.NewCredentials("")
	s, _ := New(Options{Backend: fb, Accounts: fb, Credentials: creds})

	if err := s.Register(context.Background(), "new@b.c", "pw", "New User"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if creds.Token() != "fresh" {
		t.Fatalf("token = %q, want login after register", creds.Token())
	}
	if fb.callCount("register") != 1 || fb.callCount("login") != 1 {
		t.Fatalf("calls = %v", fb.calls)
	}
	if len(s.Snapshot().Catalog) != 1 {
		t.Fatalf("register should refresh collections")
	}
}

func TestRegister_DuplicateEmailSkipsLogin(t *testing.T) {
	fb := &fakeBackend{token: "fresh"}
	s, _ := New(Options{Backend: fb, Accounts: fb})

	if err := s.Register(context.Background(), "taken@b.c", "pw", ""); err == nil {
		t.Fatalf("Register should fail")
	}
	if s.Authenticated() || fb.callCount("login") != 0 {
		t.Fatalf("failed register must not log in, calls = %v", fb.calls)
	}
	if !strings.Contains(s.Notice(), "Email already registered") {
		t.Fatalf("notice = %q", s.Notice())
	}
}

func TestLogout_ClearsEverything(t *testing.T) {
	fb := &fakeBackend{catalog: numbered(30), searchGenerated: []itemgate.GeneratedItem{{ID: "1"}}}
	s := newSession(t, fb)
	_ = s.RefreshAll(context.Background())
	_ = s.Search(context.Background(), state.TabGenerated, "x")
	s.SetPage(state.TabCatalog, 3)
	s.SetActiveTab(state.TabGenerated)

	s.Logout()

	if s.Authenticated() || s.ActiveTab() != state.TabCatalog {
		t.Fatalf("authenticated=%v tab=%v", s.Authenticated(), s.ActiveTab())
	}
	if s.Page(state.TabCatalog) != 1 || s.Query(state.TabGenerated) != "" {
		t.Fatalf("cursor/query survived logout")
	}
	if s.PageSize() != 10 {
		t.Fatalf("page size = %d, want preserved 10", s.PageSize())
	}
	if snap := s.Snapshot(); len(snap.Catalog)+len(snap.Generated) != 0 {
		t.Fatalf("collections survived logout")
	}
}

func TestIsAdmin_FallsBackToTokenClaims(t *testing.T) {
	token := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiI3Iiwicm9sZSI6ImFkbWluIn0."
	fb := &fakeBackend{}
	s, _ := New(Options{Backend: fb, Credentials: auth.NewCredentials(token)})
	if !s.IsAdmin() {
		t.Fatalf("IsAdmin() = false, want role claim honoured")
	}
	if err := s.LoadUser(context.Background()); err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if user, ok := s.User(); !ok || user.ID != "7" {
		t.Fatalf("user from claims = %+v", user)
	}
}

func TestNew_DropsExpiredToken(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	const header = "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0."

	expired, err := New(Options{Backend: &fakeBackend{}, Credentials: auth.NewCredentials(header + "eyJzdWIiOiI3IiwiZXhwIjoxNzAwMDAwMDAwfQ."), Now: now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if expired.Authenticated() {
		t.Fatalf("expired token should be dropped")
	}
	if !strings.Contains(expired.Notice(), "expired") {
		t.Fatalf("notice = %q", expired.Notice())
	}

	valid, _ := New(Options{Backend: &fakeBackend{}, Credentials: auth.NewCredentials(header + "eyJzdWIiOiI3IiwiZXhwIjoxOTAwMDAwMDAwfQ."), Now: now})
	if !valid.Authenticated() || valid.Notice() != "" {
		t.Fatalf("unexpired token should be kept, notice = %q", valid.Notice())
	}
}

func TestImport_NoticeAndCatalogRefresh(t *testing.T) {
	fb := &fakeBackend{importRes: itemgate.ImportResult{Success: true, Added: 3, Skipped: 1, Errors: []string{"row 4"}}}
	s := newSession(t, fb)

	res, err := s.Import(context.Background(), " items.xlsx ")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Added != 3 || s.Notice() != "Imported: 3 added, 1 skipped, 1 errors" {
		t.Fatalf("res=%+v notice=%q", res, s.Notice())
	}
	if fb.callCount("list catalog") != 1 {
		t.Fatalf("import should refresh the catalog")
	}

	if _, err := s.Import(context.Background(), ""); itemgate.KindOf(err) != itemgate.KindValidation {
		t.Fatalf("empty path err = %v", err)
	}
}

func TestExport_UsesDownloadDir(t *testing.T) {
	fb := &fakeBackend{}
	s := newSession(t, fb)
	path, err := s.Export(context.Background(), itemgate.ExportItems)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if fb.downloadDir != "/tmp/dl" || path != "/tmp/dl/items_export_2024-05-06.xlsx" {
		t.Fatalf("dir=%q path=%q", fb.downloadDir, path)
	}
}

func TestLogs_RequiresAdmin(t *testing.T) {
	fb := &fakeBackend{user: itemgate.User{Role: "user"}, logs: []itemgate.LogEntry{{Action: "generate"}}}
	s := newSession(t, fb)
	_ = s.LoadUser(context.Background())
	if _, err := s.Logs(context.Background()); itemgate.KindOf(err) != itemgate.KindValidation {
		t.Fatalf("non-admin err = %v", err)
	}

	fb.user.Role = "admin"
	_ = s.LoadUser(context.Background())
	entries, err := s.Logs(context.Background())
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries=%v err=%v", entries, err)
	}
}

func TestOptionalCollaboratorsMissing(t *testing.T) {
	s, _ := New(Options{Backend: &fakeBackend{}})
	if err := s.Login(context.Background(), "a", "b"); err != ErrUnsupported {
		t.Fatalf("Login err = %v", err)
	}
	if err := s.Register(context.Background(), "a", "b", ""); err != ErrUnsupported {
		t.Fatalf("Register err = %v", err)
	}
	if _, err := s.Export(context.Background(), itemgate.ExportBackup); err != ErrUnsupported {
		t.Fatalf("Export err = %v", err)
	}
}
