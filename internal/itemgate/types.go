package itemgate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ItemID is an identifier that the API emits either as a JSON number or as a
// JSON string. Both decode to the same textual form.
type ItemID string

// UnmarshalJSON accepts numbers, strings, and null.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ItemID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("item id %s: %w", string(trimmed), err)
	}
	*id = ItemID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers so path and body forms agree with
// the server's integer keys.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String implements fmt.Stringer.
func (id ItemID) String() string { return string(id) }

// IsZero reports whether the id is unset.
func (id ItemID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// CatalogItem is a product available for content generation.
type CatalogItem struct {
	ID            ItemID  `json:"id"`
	ExternalID    ItemID  `json:"id_item"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug,omitempty"`
	Stuff         string  `json:"stuff,omitempty"`
	Price         float64 `json:"price"`
	PhotoURL      string  `json:"photoUrl,omitempty"`
	ImageTitle    string  `json:"image_title,omitempty"`
	Balance       int     `json:"balance,omitempty"`
	HasGeneration bool    `json:"has_generation,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// Key returns the canonical identifier: the numeric id when present,
// otherwise the external id_item.
func (c CatalogItem) Key() ItemID {
	if !c.ID.IsZero() {
		return c.ID
	}
	return c.ExternalID
}

// Matches reports whether id names this item under either identifier field.
func (c CatalogItem) Matches(id ItemID) bool {
	if id.IsZero() {
		return false
	}
	return c.ID == id || c.ExternalID == id
}

// GeneratedItem is the AI-produced content record for one catalog item.
type GeneratedItem struct {
	ID             ItemID       `json:"id"`
	CatalogItemID  ItemID       `json:"catalog_item_id"`
	GenerationName string       `json:"generation_name,omitempty"`
	Description    *string      `json:"ai_description"`
	Keywords       *string      `json:"ai_keywords"`
	PromptVersion  string       `json:"ai_prompt_version,omitempty"`
	CatalogItem    *CatalogItem `json:"catalog_item"`
	CreatedAt      string       `json:"created_at,omitempty"`
	UpdatedAt      string       `json:"updated_at,omitempty"`

	// Pending marks a placeholder synthesized for an in-flight generation.
	// It is never decoded from the wire.
	Pending bool `json:"-"`
}

// Generation status values shown for generated rows.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
)

// Status reports "processing" for placeholders and rows without a
// description yet, "ready" otherwise.
func (g GeneratedItem) Status() string {
	if g.Pending || g.Description == nil || strings.TrimSpace(*g.Description) == "" {
		return StatusProcessing
	}
	return StatusReady
}

// Name returns the display name of the source item.
func (g GeneratedItem) Name() string {
	if g.CatalogItem != nil {
		return g.CatalogItem.Name
	}
	return ""
}

// Price returns the price of the source item.
func (g GeneratedItem) Price() float64 {
	if g.CatalogItem != nil {
		return g.CatalogItem.Price
	}
	return 0
}

// DescriptionText returns the description or an empty string.
func (g GeneratedItem) DescriptionText() string {
	if g.Description == nil {
		return ""
	}
	return *g.Description
}

// KeywordsText returns the keywords or an empty string.
func (g GeneratedItem) KeywordsText() string {
	if g.Keywords == nil {
		return ""
	}
	return *g.Keywords
}

// SourceKey returns the canonical key of the catalog item this generation
// belongs to.
func (g GeneratedItem) SourceKey() ItemID {
	if !g.CatalogItemID.IsZero() {
		return g.CatalogItemID
	}
	if g.CatalogItem != nil {
		return g.CatalogItem.Key()
	}
	return ""
}

// GenerateResponse mirrors the generate endpoint payload. A non-empty Error
// marks a failed generation even when the HTTP status was 2xx.
type GenerateResponse struct {
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
	GenerationID  ItemID         `json:"generation_id"`
	CatalogItemID ItemID         `json:"catalog_item_id"`
	Message       string         `json:"message"`
	Generation    *GeneratedItem `json:"generation"`
}

// GenerationUpdate carries the user-editable fields of a generation.
type GenerationUpdate struct {
	Description string `json:"ai_description"`
	Keywords    string `json:"ai_keywords"`
}

// ImportResult mirrors the bulk-import payload.
type ImportResult struct {
	Success bool     `json:"success"`
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// User mirrors /auth/me.
type User struct {
	ID       ItemID `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	Credits  int    `json:"credits"`
}

// IsAdmin reports whether the user may run privileged ingestion operations.
func (u User) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(u.Role), "admin")
}

// TokenResponse mirrors /auth/login-json.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// LogEntry mirrors one row of /sima-land/logs.
type LogEntry struct {
	ID        ItemID `json:"id"`
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	ItemID    string `json:"item_id"`
	Message   string `json:"message"`
	Status    string `json:"status"`
}

// ParsedTime returns the timestamp as time.Time when possible.
func (e LogEntry) ParsedTime() time.Time {
	return parseTime(e.Timestamp)
}

// Collection names the entity kind a list or search targets.
type Collection int

const (
	CollectionCatalog Collection = iota
	CollectionGenerated
)

// String implements fmt.Stringer.
func (c Collection) String() string {
	switch c {
	case CollectionGenerated:
		return "generated"
	default:
		return "catalog"
	}
}

// ExportKind selects a spreadsheet download.
type ExportKind int

const (
	ExportItems ExportKind = iota
	ExportBackup
)

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
