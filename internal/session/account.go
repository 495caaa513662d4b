package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/seomate/seomate/internal/auth"
	"github.com/seomate/seomate/internal/itemgate"
	"github.com/seomate/seomate/internal/state"
)

// ErrUnsupported is returned when an optional collaborator was not wired.
var ErrUnsupported = errors.New("operation not available")

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.creds.Present()
}

// Login exchanges credentials for a token, loads the user and refreshes both
// collections.
func (s *Session) Login(ctx context.Context, email, password string) error {
	const op = "login"
	if s.accounts == nil {
		return s.reject(op, ErrUnsupported)
	}
	token, err := s.accounts.Login(ctx, email, password)
	if err != nil {
		return s.reject(op, err)
	}
	s.creds.Set(token)
	s.log.Info("logged in", "email", email)

	if err := s.LoadUser(ctx); err != nil {
		return err
	}
	s.setNotice("Logged in")
	return s.RefreshAll(ctx)
}

// Register creates an account and then logs in with the same credentials.
func (s *Session) Register(ctx context.Context, email, password, fullName string) error {
	const op = "register"
	if s.accounts == nil {
		return s.reject(op, ErrUnsupported)
	}
	user, err := s.accounts.Register(ctx, email, password, fullName)
	if err != nil {
		return s.reject(op, err)
	}
	s.log.Info("registered", "email", user.Email)
	return s.Login(ctx, email, password)
}

// LoadUser fetches the current user. Without an Accounts collaborator the
// user is derived from the token claims.
func (s *Session) LoadUser(ctx context.Context) error {
	const op = "me"
	if s.accounts == nil {
		claims, err := auth.ParseClaims(s.creds.Token())
		if err != nil {
			return nil
		}
		s.mu.Lock()
		s.user = &itemgate.User{ID: itemgate.ItemID(claims.Subject), Email: claims.Email, Role: claims.Role}
		s.mu.Unlock()
		return nil
	}
	user, err := s.accounts.Me(ctx)
	if err != nil {
		return s.reject(op, err)
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// User returns the logged-in user when known.
func (s *Session) User() (itemgate.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return itemgate.User{}, false
	}
	return *s.user, true
}

// IsAdmin reports whether the current user has the admin role. The token's
// role claim is consulted when the user has not been loaded.
func (s *Session) IsAdmin() bool {
	if user, ok := s.User(); ok {
		return user.IsAdmin()
	}
	claims, err := auth.ParseClaims(s.creds.Token())
	if err != nil {
		return false
	}
	return claims.IsAdmin()
}

// Logout forgets the token and every piece of session state.
func (s *Session) Logout() {
	s.creds.Invalidate()
	s.store.Reset()
	s.tracker.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors = state.NewCursors(s.cursors.PageSize())
	s.active = state.TabCatalog
	s.queries = make(map[state.Tab]string)
	s.tabErrs = make(map[state.Tab]error)
	s.user = nil
	s.notice = ""
}

// Import uploads the spreadsheet at path and refreshes the catalog.
func (s *Session) Import(ctx context.Context, path string) (itemgate.ImportResult, error) {
	const op = "import"
	if s.files == nil {
		return itemgate.ImportResult{}, s.reject(op, ErrUnsupported)
	}
	result, err := s.files.Import(ctx, strings.TrimSpace(path))
	if err != nil {
		return itemgate.ImportResult{}, s.reject(op, err)
	}
	s.log.Info("import finished", "added", result.Added, "skipped", result.Skipped, "errors", len(result.Errors))
	s.setNotice(importNotice(result))
	return result, s.RefreshCatalog(ctx)
}

func importNotice(r itemgate.ImportResult) string {
	msg := fmt.Sprintf("Imported: %d added, %d skipped", r.Added, r.Skipped)
	if n := len(r.Errors); n > 0 {
		msg += fmt.Sprintf(", %d errors", n)
	}
	return msg
}

// Export downloads the spreadsheet export or the database backup into the
// download directory and returns the written path.
func (s *Session) Export(ctx context.Context, kind itemgate.ExportKind) (string, error) {
	const op = "export"
	if s.files == nil {
		return "", s.reject(op, ErrUnsupported)
	}
	path, err := s.files.Download(ctx, kind, s.downloadDir, s.now())
	if err != nil {
		return "", s.reject(op, err)
	}
	s.log.Info("export written", "path", path)
	s.setNotice("Saved " + path)
	return path, nil
}

// Logs returns the server activity log. Only admins may read it.
func (s *Session) Logs(ctx context.Context) ([]itemgate.LogEntry, error) {
	const op = "logs"
	if s.files == nil {
		return nil, s.reject(op, ErrUnsupported)
	}
	if !s.IsAdmin() {
		return nil, s.reject(op, itemgate.Validation(op, "admin role required"))
	}
	entries, err := s.files.FetchLogs(ctx)
	if err != nil {
		return nil, s.reject(op, err)
	}
	return entries, nil
}
