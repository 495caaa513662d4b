package session

import (
	"context"
	"time"

	"github.com/seomate/seomate/internal/itemgate"
)

// Backend is the list, generate, search and save surface the session drives.
type Backend interface {
	ListCatalog(ctx context.Context) ([]itemgate.CatalogItem, error)
	ListGenerated(ctx context.Context) ([]itemgate.GeneratedItem, error)
	Generate(ctx context.Context, id itemgate.ItemID) (*itemgate.GenerateResponse, error)
	SearchCatalog(ctx context.Context, query string) ([]itemgate.CatalogItem, error)
	SearchGenerated(ctx context.Context, query string) ([]itemgate.GeneratedItem, error)
	SaveGeneration(ctx context.Context, id itemgate.ItemID, update itemgate.GenerationUpdate) error
}

// Accounts creates accounts, exchanges credentials for a token and
// identifies the caller.
type Accounts interface {
	Register(ctx context.Context, email, password, fullName string) (itemgate.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (itemgate.User, error)
}

// Files covers spreadsheet import/export and the server activity log.
type Files interface {
	Import(ctx context.Context, path string) (itemgate.ImportResult, error)
	Download(ctx context.Context, kind itemgate.ExportKind, dir string, now time.Time) (string, error)
	FetchLogs(ctx context.Context) ([]itemgate.LogEntry, error)
}

var (
	_ Backend  = (*itemgate.Client)(nil)
	_ Accounts = (*itemgate.Client)(nil)
	_ Files    = (*itemgate.Client)(nil)
)
