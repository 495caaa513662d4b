package itemgate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the bearer token attached to privileged requests.
type TokenSource interface {
	Token() string
}

// Client talks to the ItemGate HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	stream    *http.Client
	tokens    TokenSource
	userAgent string
}

const (
	defaultAPIBase   = "http://localhost:8000"
	defaultUserAgent = "seomate/0.1"
	maxIngestCount   = 10000
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout for JSON calls. Streaming calls
// are never bounded by it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the transport used for all requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
			c.stream = &http.Client{Transport: h.Transport}
		}
	}
}

// NewClient builds a Client for apiBase. tokens may be nil for anonymous use.
func NewClient(apiBase string, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		stream:    &http.Client{},
		tokens:    tokens,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListCatalog retrieves the full catalog collection.
func (c *Client) ListCatalog(ctx context.Context) ([]CatalogItem, error) {
	var items []CatalogItem
	if err := c.doJSON(ctx, "list catalog", http.MethodGet, endpoint("/sima-land/get_items"), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListGenerated retrieves the full generated collection.
func (c *Client) ListGenerated(ctx context.Context) ([]GeneratedItem, error) {
	var items []GeneratedItem
	if err := c.doJSON(ctx, "list generated", http.MethodGet, endpoint("/sima-land/get_items_sellers"), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Generate requests AI content for one catalog item. A 2xx payload with an
// error field is returned as a KindApplication error.
func (c *Client) Generate(ctx context.Context, id ItemID) (*GenerateResponse, error) {
	const op = "generate"
	if id.IsZero() {
		return nil, Validation(op, "item id required")
	}
	var payload GenerateResponse
	rel := endpoint("/sima-land/ai_generate_desc_seller/", id.String())
	if err := c.doJSON(ctx, op, http.MethodPost, rel, nil, &payload); err != nil {
		return nil, err
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return &payload, Application(op, msg)
	}
	return &payload, nil
}

// SearchCatalog runs a free-text search over the catalog collection.
func (c *Client) SearchCatalog(ctx context.Context, query string) ([]CatalogItem, error) {
	var items []CatalogItem
	if err := c.search(ctx, "search catalog", "/sima-land/search_item_to_word/", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SearchGenerated runs a free-text search over the generated collection.
func (c *Client) SearchGenerated(ctx context.Context, query string) ([]GeneratedItem, error) {
	var items []GeneratedItem
	if err := c.search(ctx, "search generated", "/sima-land/search_generated_items/", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) search(ctx context.Context, op, prefix, query string, dest any) error {
	word := strings.TrimSpace(query)
	if word == "" {
		return Validation(op, "search query is empty")
	}
	return c.doJSON(ctx, op, http.MethodPost, endpoint(prefix, word), nil, dest)
}

// SaveGeneration stores an edited description/keywords pair.
func (c *Client) SaveGeneration(ctx context.Context, id ItemID, update GenerationUpdate) error {
	const op = "save generation"
	if id.IsZero() {
		return Validation(op, "generation id required")
	}
	body, err := json.Marshal(update)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("encode body: %w", err)}
	}
	rel := endpoint("/sima-land/update_generation/", id.String())
	return c.doJSON(ctx, op, http.MethodPut, rel, bytes.NewReader(body), nil)
}

// OpenIngest starts the catalog ingestion stream for count items and returns
// the chunked body. The caller owns closing it.
func (c *Client) OpenIngest(ctx context.Context, count int) (io.ReadCloser, error) {
	const op = "ingest"
	if count <= 0 || count > maxIngestCount {
		return nil, Validation(op, fmt.Sprintf("count must be between 1 and %d", maxIngestCount))
	}
	rel := endpoint("/sima-land/loading_words_db/", strconv.Itoa(count))
	req, err := c.newRequest(ctx, op, http.MethodGet, rel, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	if err := checkStatus(op, resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// Import uploads a spreadsheet at path as a bulk catalog import.
func (c *Client) Import(ctx context.Context, path string) (ImportResult, error) {
	const op = "import"
	if strings.TrimSpace(path) == "" {
		return ImportResult{}, Validation(op, "no file selected")
	}
	file, err := os.Open(path)
	if err != nil {
		return ImportResult{}, Validation(op, fmt.Sprintf("open %s: %v", path, err))
	}
	defer file.Close()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return ImportResult{}, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return ImportResult{}, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("read file: %w", err)}
	}
	if err := form.Close(); err != nil {
		return ImportResult{}, &Error{Kind: KindTransport, Op: op, Err: err}
	}

	req, err := c.newRequest(ctx, op, http.MethodPost, endpoint("/excel/upload-items"), &buf)
	if err != nil {
		return ImportResult{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	var result ImportResult
	if err := c.execute(op, c.http, req, &result); err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

// Download writes the selected spreadsheet export to dir and returns the
// written path.
func (c *Client) Download(ctx context.Context, kind ExportKind, dir string, now time.Time) (string, error) {
	const op = "export"
	path, name := "/excel/export-items", "items_export_"
	if kind == ExportBackup {
		path, name = "/excel/backup-database", "itemgate_backup_"
	}
	if strings.TrimSpace(dir) == "" {
		return "", Validation(op, "download directory not configured")
	}
	req, err := c.newRequest(ctx, op, http.MethodGet, endpoint(path), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(op, resp); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	target := filepath.Join(dir, name+now.Format("2006-01-02")+".xlsx")
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return "", &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", target, err)
	}
	return target, nil
}

// FetchLogs retrieves the server activity log (admin only).
func (c *Client) FetchLogs(ctx context.Context) ([]LogEntry, error) {
	var entries []LogEntry
	if err := c.doJSON(ctx, "fetch logs", http.MethodGet, endpoint("/sima-land/logs"), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	const op = "login"
	if strings.TrimSpace(email) == "" || password == "" {
		return "", Validation(op, "email and password required")
	}
	body, err := json.Marshal(map[string]string{"email": strings.TrimSpace(email), "password": password})
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Err: err}
	}
	var token TokenResponse
	if err := c.doJSON(ctx, op, http.MethodPost, endpoint("/auth/login-json"), bytes.NewReader(body), &token); err != nil {
		return "", err
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return "", Application(op, "server returned an empty token")
	}
	return token.AccessToken, nil
}

// minPasswordLength mirrors the server's account rule.
const minPasswordLength = 6

// Register creates an account. It does not log in; the caller follows up
// with Login. fullName is optional.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (User, error) {
	const op = "register"
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, Validation(op, "email and password required")
	}
	if len(password) < minPasswordLength {
		return User{}, Validation(op, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	body, err := json.Marshal(struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name,omitempty"`
	}{email, password, strings.TrimSpace(fullName)})
	if err != nil {
		return User{}, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	var user User
	if err := c.doJSON(ctx, op, http.MethodPost, endpoint("/auth/register"), bytes.NewReader(body), &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.doJSON(ctx, "me", http.MethodGet, endpoint("/auth/me"), nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) doJSON(ctx context.Context, op, method string, rel *url.URL, body io.Reader, dest any) error {
	req, err := c.newRequest(ctx, op, method, rel, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.execute(op, c.http, req, dest)
}

// endpoint joins path with escaped segments. RawPath keeps the escaping
// intact when the URL is resolved against the base.
func endpoint(path string, segments ...string) *url.URL {
	raw := path
	for _, seg := range segments {
		raw += url.PathEscape(seg)
	}
	for _, seg := range segments {
		path += seg
	}
	return &url.URL{Path: path, RawPath: raw}
}

func (c *Client) newRequest(ctx context.Context, op, method string, rel *url.URL, body io.Reader) (*http.Request, error) {
	if c == nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: errors.New("client is nil")}
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.Token()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) execute(op string, hc *http.Client, req *http.Request, dest any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(op, resp); err != nil {
		return err
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return &Error{Kind: KindAuth, Op: op, Status: resp.StatusCode, Err: ErrNotAuthenticated}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Err: statusError(resp)}
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok && s != "" {
			return fmt.Errorf("returned status %d: %s", resp.StatusCode, s)
		}
	}
	return fmt.Errorf("returned status %d", resp.StatusCode)
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
